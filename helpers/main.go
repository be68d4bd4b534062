package helpers

import (
	"strings"
	"time"
	"unicode"

	"github.com/dgrijalva/jwt-go"
	"github.com/medbridge/backend/models"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const passwordCost = 12

func ParserTokenUnverified(tokenStr string) (jwt.MapClaims, bool) {
	var p jwt.Parser
	token, _, err := p.ParseUnverified(tokenStr, jwt.MapClaims{})
	if err != nil {
		return nil, false
	}
	tokendata, ok := token.Claims.(jwt.MapClaims)
	return tokendata, ok
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func AuthenticateHashedPassword(hashed string, inputPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(inputPassword))
	return err == nil
}

// GenerateToken signs an HS256 token carrying the user id, role and email under the "u" claim.
func GenerateToken(user *models.User, jwtSecret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := struct {
		User map[string]interface{} `json:"u"`
		jwt.StandardClaims
	}{
		map[string]interface{}{
			"i":         user.ID,
			"r":         user.Role,
			"email":     user.Email,
			"firstName": user.Firstname,
			"lastName":  user.Lastname,
		},
		jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
	if err != nil {
		return "", err
	}

	return token, nil
}

func RemoveAccents(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMark), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(result)
}

func isMark(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
