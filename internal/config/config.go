package config

import (
	"errors"
	"os"
	"strconv"
)

// Config holds substation-sim configuration (shape as the other service templates).
type Config struct {
	AppEnv   string // APP_ENV
	AppHost  string // APP_HOST
	HTTPPort string // APP_PORT or HTTP_PORT
	LogLevel string // LOG_LEVEL

	// WebSocket
	WSReadBufferSize  int
	WSWriteBufferSize int
	WSMaxMessageSize  int64

	// Room / game pacing
	CountdownSeconds  int // lobby countdown before the scenario starts
	TickIntervalMS    int // room tick period; 1000 in production, tests drive ticks directly
	AlarmLogCapacity  int // bounded alarm/comms log size
	RoomCodeLength    int // join code length
	MaxPlayersPerRoom int

	// Simulated grid frequency safe band.
	FreqMinHz     float64
	FreqMaxHz     float64
	FreqNominalHz float64

	// Results are announced automatically when the scenario ends.
	AutoAnnounceDefault bool

	// WebSocket URL returned in CreateRoom (e.g. wss://sim.example.com)
	WSBaseURL string
}

// Load loads config from environment (.env handled by the caller, as in cmd/).
func Load() (*Config, error) {
	readBuf, _ := strconv.Atoi(getEnv("WS_READ_BUFFER_SIZE", "4096"))
	writeBuf, _ := strconv.Atoi(getEnv("WS_WRITE_BUFFER_SIZE", "4096"))
	maxMsg, _ := strconv.ParseInt(getEnv("WS_MAX_MESSAGE_SIZE", "262144"), 10, 64)
	countdown, _ := strconv.Atoi(getEnv("COUNTDOWN_SECONDS", "10"))
	tickMS, _ := strconv.Atoi(getEnv("TICK_INTERVAL_MS", "1000"))
	logCap, _ := strconv.Atoi(getEnv("ALARM_LOG_CAPACITY", "200"))
	codeLen, _ := strconv.Atoi(getEnv("ROOM_CODE_LENGTH", "6"))
	maxPlayers, _ := strconv.Atoi(getEnv("MAX_PLAYERS_PER_ROOM", "24"))
	freqMin, _ := strconv.ParseFloat(getEnv("FREQ_MIN_HZ", "47.0"), 64)
	freqMax, _ := strconv.ParseFloat(getEnv("FREQ_MAX_HZ", "52.0"), 64)
	freqNom, _ := strconv.ParseFloat(getEnv("FREQ_NOMINAL_HZ", "50.0"), 64)
	autoAnnounce, _ := strconv.ParseBool(getEnv("AUTO_ANNOUNCE_DEFAULT", "false"))

	cfg := &Config{
		AppEnv:              getEnv("APP_ENV", "development"),
		AppHost:             getEnv("APP_HOST", "0.0.0.0"),
		HTTPPort:            firstEnv("APP_PORT", "HTTP_PORT", "8090"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		WSReadBufferSize:    readBuf,
		WSWriteBufferSize:   writeBuf,
		WSMaxMessageSize:    maxMsg,
		CountdownSeconds:    countdown,
		TickIntervalMS:      tickMS,
		AlarmLogCapacity:    logCap,
		RoomCodeLength:      codeLen,
		MaxPlayersPerRoom:   maxPlayers,
		FreqMinHz:           freqMin,
		FreqMaxHz:           freqMax,
		FreqNominalHz:       freqNom,
		AutoAnnounceDefault: autoAnnounce,
		WSBaseURL:           getEnv("WS_BASE_URL", ""),
	}
	return cfg, nil
}

// Validate checks required fields and internal consistency.
func (c *Config) Validate() error {
	if c.CountdownSeconds < 0 {
		return errors.New("config: COUNTDOWN_SECONDS must be >= 0")
	}
	if c.TickIntervalMS <= 0 {
		return errors.New("config: TICK_INTERVAL_MS must be > 0")
	}
	if c.AlarmLogCapacity <= 0 {
		return errors.New("config: ALARM_LOG_CAPACITY must be > 0")
	}
	if c.RoomCodeLength < 4 {
		return errors.New("config: ROOM_CODE_LENGTH must be >= 4")
	}
	if c.FreqMinHz >= c.FreqMaxHz {
		return errors.New("config: FREQ_MIN_HZ must be below FREQ_MAX_HZ")
	}
	if c.FreqNominalHz < c.FreqMinHz || c.FreqNominalHz > c.FreqMaxHz {
		return errors.New("config: FREQ_NOMINAL_HZ must be inside the safe band")
	}
	return nil
}

// Addr returns listen address for HTTP server.
func (c *Config) Addr() string {
	return c.AppHost + ":" + c.HTTPPort
}

func firstEnv(keysAndDef ...string) string {
	if len(keysAndDef) == 0 {
		return ""
	}
	def := keysAndDef[len(keysAndDef)-1]
	keys := keysAndDef[:len(keysAndDef)-1]
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
