package auth

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authdb "github.com/nao1215/socialhub/internal/auth/db"
	"github.com/nao1215/socialhub/pkg/token"
)

// tokenPair はログイン時に発行されるアクセストークンとリフレッシュトークンの組。
type tokenPair struct {
	// AccessToken は短命（30分）の署名付きトークン。サーバー側には保存しない。
	AccessToken string
	// RefreshToken は長命（7日）の署名付きトークン。発行時にストアへ永続化する。
	RefreshToken string
}

// issueTokenPair はユーザーに対してトークンペアを発行し、リフレッシュトークンを永続化する。
// 発行元のUser-AgentとIPアドレスをリフレッシュトークンの行に記録する。
// 同一ユーザーの既存リフレッシュトークンには手を付けない（複数セッションを許可）。
func (s *Server) issueTokenPair(c *gin.Context, user authdb.User) (tokenPair, error) {
	access, err := token.Generate(s.accessSecret, user.ID, user.Username, token.AccessTokenTTL)
	if err != nil {
		return tokenPair{}, fmt.Errorf("アクセストークンの生成に失敗: %w", err)
	}

	refresh, err := token.Generate(s.refreshSecret, user.ID, user.Username, token.RefreshTokenTTL)
	if err != nil {
		return tokenPair{}, fmt.Errorf("リフレッシュトークンの生成に失敗: %w", err)
	}

	if err := s.queries.CreateRefreshToken(c.Request.Context(), authdb.CreateRefreshTokenParams{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Token:     refresh,
		UserAgent: c.GetHeader("User-Agent"),
		IPAddress: c.ClientIP(),
		ExpiredAt: time.Now().Add(token.RefreshTokenTTL),
	}); err != nil {
		return tokenPair{}, fmt.Errorf("リフレッシュトークンの永続化に失敗: %w", err)
	}

	return tokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
