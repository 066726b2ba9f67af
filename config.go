package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all server settings. Defaults match the deployed game;
// environment variables override, flags override environment.
type Config struct {
	UDPAddr  string // game protocol (datagram)
	TCPAddr  string // game info lookup + accelerometer ingestion (stream)
	HTTPAddr string // spectator feed, leaderboard, metrics, admin

	DBPath string

	MaxBossHP  int
	DamageStep int

	OverlayInterval time.Duration
	MotionInterval  time.Duration

	// MotionSource selects where relayed motion samples come from:
	// "sim" replays generated samples, "live" drains the TCP ingest feed.
	MotionSource string
	SimSamples   int

	BossAI         bool
	BossAIInterval time.Duration

	// AdminKey unlocks the /admin endpoints. Empty disables them.
	AdminKey string

	// PublicHost is the address advertised in the /qr join code.
	PublicHost string
}

// LoadConfig reads .env (if present) and builds the config from the environment.
func LoadConfig() Config {
	godotenv.Load()

	return Config{
		UDPAddr:  getEnvStr("GAME_UDP_ADDR", ":12345"),
		TCPAddr:  getEnvStr("GAME_TCP_ADDR", ":12000"),
		HTTPAddr: getEnvStr("HTTP_ADDR", ":8080"),

		DBPath: getEnvStr("DB_PATH", "game.db"),

		MaxBossHP:  getEnvInt("MAX_BOSS_HP", 3000),
		DamageStep: getEnvInt("DAMAGE_STEP", 10),

		OverlayInterval: getEnvDuration("OVERLAY_INTERVAL", time.Second),
		MotionInterval:  getEnvDuration("MOTION_INTERVAL", 50*time.Millisecond),

		MotionSource: getEnvStr("MOTION_SOURCE", "sim"),
		SimSamples:   getEnvInt("SIM_SAMPLES", 300000),

		BossAI:         os.Getenv("BOSS_AI") == "true",
		BossAIInterval: getEnvDuration("BOSS_AI_INTERVAL", 3*time.Second),

		AdminKey: os.Getenv("ADMIN_KEY"),

		PublicHost: getEnvStr("PUBLIC_HOST", "localhost"),
	}
}

func getEnvStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
