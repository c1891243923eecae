// Package token はアクセストークン・リフレッシュトークンの生成と検証を提供する。
//
// authサービスがトークンを発行し、gatewayサービスが保護ルートで検証する。
// HS256で署名したJWTを使用し、ユーザーIDとユーザー名をクレームとして運ぶ。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenTTL はアクセストークンの有効期間（30分）。
const AccessTokenTTL = 30 * time.Minute

// RefreshTokenTTL はリフレッシュトークンの有効期間（7日）。
const RefreshTokenTTL = 7 * 24 * time.Hour

// ErrInvalidToken は署名不一致・期限切れ・デコード失敗のいずれかを表す。
// 呼び出し側にどの検査で失敗したかを区別させないため、検証失敗は必ずこのエラーに畳み込む。
var ErrInvalidToken = errors.New("invalid token")

// Claims はJWTトークンのクレーム（ペイロード）を表す。
// gatewayが検証後にバックエンドへ伝播する識別情報を運ぶ。
type Claims struct {
	jwt.RegisteredClaims
	// UserID は認証済みユーザーの一意識別子。
	UserID string `json:"user_id"`
	// Username はユーザーの表示名。
	Username string `json:"username"`
}

// Generate はユーザー情報からJWTトークンを生成する。
// ttlにはAccessTokenTTLまたはRefreshTokenTTLを指定する。
// jtiを必ず採番するため、同一ユーザーへ連続発行してもトークン文字列は毎回異なる。
func Generate(secret, userID, username string, ttl time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "socialhub-auth",
		},
		UserID:   userID,
		Username: username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("JWTトークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// Verify はトークン文字列の署名と有効期限を検証し、クレームを返す。
// 失敗理由によらずErrInvalidTokenを返す（フェイルクローズ）。
func Verify(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
