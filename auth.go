package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	jwtExpiry        = 24 * time.Hour
	bcryptCost       = 12
	loginRateWindow  = 60 * time.Second
	maxLoginAttempts = 10
)

// AdminAuth guards the operator endpoints. The admin key comes from the
// environment; only its bcrypt hash is stored. A successful login mints a
// short-lived JWT that the /admin handlers validate. Game clients have no
// accounts and never touch this path.
type AdminAuth struct {
	db        *DB
	jwtSecret []byte
	enabled   bool

	// Rate limiting for login attempts (IP -> attempts)
	rateMu  sync.Mutex
	rateMap map[string]*rateEntry
}

type rateEntry struct {
	Count   int
	ResetAt time.Time
}

// NewAdminAuth creates the auth handler. An empty adminKey disables the
// admin surface entirely.
func NewAdminAuth(db *DB, adminKey string) *AdminAuth {
	a := &AdminAuth{
		db:        db,
		jwtSecret: loadOrCreateSecret(db),
		rateMap:   make(map[string]*rateEntry),
	}
	if adminKey == "" {
		return a
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(adminKey), bcryptCost)
	if err != nil {
		log.Printf("warning: could not hash admin key, admin surface disabled: %v", err)
		return a
	}
	if db != nil {
		if err := db.SetSetting("admin_key_hash", string(hash)); err != nil {
			log.Printf("warning: could not persist admin key hash: %v", err)
		}
	}
	a.enabled = true
	return a
}

// Enabled reports whether the admin surface is active.
func (a *AdminAuth) Enabled() bool {
	return a.enabled
}

// loadOrCreateSecret loads the JWT secret from the database, or generates
// and persists a new one if none exists.
func loadOrCreateSecret(db *DB) []byte {
	if db != nil {
		if h := db.GetSetting("jwt_secret"); h != "" {
			if b, err := hex.DecodeString(h); err == nil && len(b) == 32 {
				return b
			}
		}
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic("failed to generate JWT secret: " + err.Error())
	}
	if db != nil {
		if err := db.SetSetting("jwt_secret", hex.EncodeToString(secret)); err != nil {
			log.Printf("warning: could not persist JWT secret: %v", err)
		}
	}
	return secret
}

// Login checks the admin key and returns a token.
func (a *AdminAuth) Login(key, ip string) (string, error) {
	if !a.enabled {
		return "", fmt.Errorf("admin access disabled")
	}
	if !a.checkRate(ip) {
		return "", fmt.Errorf("too many login attempts, try again later")
	}

	hash := ""
	if a.db != nil {
		hash = a.db.GetSetting("admin_key_hash")
	}
	if hash == "" {
		return "", fmt.Errorf("admin access disabled")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
		return "", fmt.Errorf("invalid admin key")
	}
	return a.generateToken()
}

// ValidateToken checks an admin JWT.
func (a *AdminAuth) ValidateToken(tokenStr string) error {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return fmt.Errorf("invalid token")
	}
	if role, _ := claims["role"].(string); role != "admin" {
		return fmt.Errorf("invalid token claims")
	}
	return nil
}

func (a *AdminAuth) generateToken() (string, error) {
	claims := jwt.MapClaims{
		"role": "admin",
		"exp":  time.Now().Add(jwtExpiry).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

func (a *AdminAuth) checkRate(ip string) bool {
	a.rateMu.Lock()
	defer a.rateMu.Unlock()

	now := time.Now()
	entry, ok := a.rateMap[ip]
	if !ok || now.After(entry.ResetAt) {
		a.rateMap[ip] = &rateEntry{Count: 1, ResetAt: now.Add(loginRateWindow)}
		return true
	}
	entry.Count++
	return entry.Count <= maxLoginAttempts
}
