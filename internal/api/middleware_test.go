package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

func signTestToken(t *testing.T, secret string, userID uint, expiresIn time.Duration) string {
	t.Helper()
	claims := &jwtClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func newAuthTestRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", AuthMiddleware(secret), func(c *gin.Context) {
		userID, err := getUserIDFromContext(c)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"userId": userID})
	})
	return router
}

func TestAuthMiddleware(t *testing.T) {
	const secret = "middleware-secret"
	router := newAuthTestRouter(secret)

	cases := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid token", "Bearer " + signTestToken(t, secret, 42, time.Hour), http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signTestToken(t, "other-secret", 42, time.Hour), http.StatusUnauthorized},
		{"expired", "Bearer " + signTestToken(t, secret, 42, -time.Hour), http.StatusUnauthorized},
		{"zero user id", "Bearer " + signTestToken(t, secret, 0, time.Hour), http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			router.ServeHTTP(recorder, req)
			if recorder.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, recorder.Code, recorder.Body.String())
			}
		})
	}
}
