// internal/adapters/out/http/auth_client.go
package httpout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	sessiondom "storefront/internal/domain/session"
)

// AuthClient implements session.Authenticator against /auth/login.
type AuthClient struct {
	c *Client
}

func NewAuthClient(c *Client) *AuthClient {
	return &AuthClient{c: c}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResult struct {
	Token string `json:"token"`
}

func (ac *AuthClient) Login(ctx context.Context, email, password string) (string, error) {
	var res envelope[loginResult]
	err := ac.c.do(ctx, http.MethodPost, "/auth/login", nil, "", loginReq{Email: email, Password: password}, &res)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			if apiErr.Code == sessiondom.UnverifiedAccountCode {
				return "", sessiondom.ErrUnverifiedAccount
			}
			return "", fmt.Errorf("%w: %s", sessiondom.ErrLoginFailed, apiErr.Message)
		}
		return "", err
	}

	token := strings.TrimSpace(res.Result.Token)
	if token == "" {
		return "", fmt.Errorf("%w: no token received", sessiondom.ErrLoginFailed)
	}
	return token, nil
}
