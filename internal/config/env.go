package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads KEY=value pairs from the given files (".env" when none)
// into the process environment. Missing files are ignored and variables
// already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// applyEnv overlays environment variables on cfg. Empty variables are
// ignored.
func applyEnv(cfg *Config, getenv func(string) string) error {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}

	str(&cfg.Telegram.Token, "BOT_TOKEN", "TELEGRAM_TOKEN")
	str(&cfg.Telegram.NotifyChat, "NOTIFY_CHAT_ID")
	str(&cfg.League.EspnS2, "ESPN_S2")
	str(&cfg.League.SWID, "SWID")
	str(&cfg.Logging.Level, "LOG_LEVEL")

	var errs []error
	if v := strings.TrimSpace(getenv("LEAGUE_ID")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("LEAGUE_ID: invalid integer %q", v))
		} else {
			cfg.League.ID = id
		}
	}
	if v := strings.TrimSpace(getenv("YEAR")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("YEAR: invalid integer %q", v))
		} else {
			cfg.League.Year = y
		}
	}
	if v := strings.TrimSpace(getenv("OWNER_USER_IDS")); v != "" {
		ids, err := parseIDList(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("OWNER_USER_IDS: %w", err))
		} else {
			cfg.Telegram.OwnerUserIDs = ids
		}
	}
	return errors.Join(errs...)
}

func parseIDList(s string) ([]int64, error) {
	var out []int64
	for _, p := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", p)
		}
		out = append(out, id)
	}
	return out, nil
}
