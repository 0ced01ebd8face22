// Command tokengen mints a signed access token for local development.
//
// The real tokens come from the external auth service; this tool signs an
// equivalent token with the shared secret so the API can be exercised
// without running that service.
//
//	JWT_SECRET=devsecret tokengen -user abc123def456ghij -perm roll -ttl 1h
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func main() {
	userID := flag.String("user", "", "16-character user id to embed in the token")
	perms := flag.String("perm", "", "comma-separated permission list")
	ttl := flag.Duration("ttl", time.Hour, "token validity window")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET must be set")
	}
	if len(*userID) != 16 {
		log.Fatalf("user id must be exactly 16 characters, got %d", len(*userID))
	}

	permissions := []string{}
	if *perms != "" {
		permissions = strings.Split(*perms, ",")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"jti":         uuid.NewString(),
		"userId":      *userID,
		"permissions": permissions,
		"iat":         now.Unix(),
		"exp":         now.Add(*ttl).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}

	fmt.Println(token)
}
