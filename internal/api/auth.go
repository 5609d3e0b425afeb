package api

import (
	"net/http"

	"github.com/argus-security/argus-core/internal/auth"
)

// loginRequest is the POST /api/auth/login body.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse carries the issued access token.
type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// handleLogin verifies operator credentials and issues a JWT.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := auth.VerifyOperator(s.secCfg.Operator, req.Username, req.Password); err != nil {
		writeUnauthorized(w, "invalid credentials")
		return
	}

	token, err := auth.GenerateAccessToken(req.Username, s.secCfg.JWT.Secret, s.secCfg.JWT.AccessTokenTTL)
	if err != nil {
		s.logger.Error("issuing access token", "error", err)
		writeInternalError(w, "failed to issue token")
		return
	}

	writeSuccess(w, loginResponse{Token: token, Username: req.Username})
}
