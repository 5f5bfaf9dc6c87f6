package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// SMSTemplatePrefix names the environment variables holding SMS bodies:
// SMS_TEMPLATE_<id>=<text>.
const SMSTemplatePrefix = "SMS_TEMPLATE_"

// DefaultTelPattern restricts SMS recipients to French mobile numbers.
const DefaultTelPattern = `\+33[6-7]\d{8}$`

type Config struct {
	AppEnv             string
	AppAddr            string
	CORSAllowedOrigins []string
	TrustProxy         bool
	BodyLimit          string

	RedisAddr string
	RedisDB   int `validate:"gte=0"`

	RateLimitLimit  int           `validate:"gte=0"`
	RateLimitWindow time.Duration `validate:"gte=0"`

	AdminEmail          string `validate:"omitempty,email"`
	MailjetAPIKeyPublic string
	MailjetSecret       string
	MailjetSMSToken     string
	MailjetAPIURL       string `validate:"required,url"`
	ProviderTimeout     time.Duration `validate:"gte=0"`

	MailSenderEmail     string `validate:"omitempty,email"`
	MailSenderName      string
	MailDisableTracking bool
	SMSSender           string

	TemplateAllowList []string
	NumRecipients     int `validate:"gte=0"`
	VarMaxSize        int `validate:"gte=0"`
	// TelPattern is the raw pattern; TelPatternRE is nil when the check is disabled.
	TelPattern   string
	TelPatternRE *regexp.Regexp `validate:"-"`

	SMSTemplates map[string]string
}

func Load() (Config, error) {
	c := Config{}

	c.AppEnv = getEnv("APP_ENV", "development")
	c.AppAddr = getEnv("APP_ADDR", ":8080")
	c.CORSAllowedOrigins = splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*"))
	if len(c.CORSAllowedOrigins) == 0 {
		c.CORSAllowedOrigins = []string{"*"}
	}
	c.TrustProxy = getBool("TRUST_PROXY", false)
	c.BodyLimit = getEnv("BODY_LIMIT", "64K")

	c.RedisAddr = getEnv("REDIS_ADDR", "")
	c.RedisDB = getInt("REDIS_DB", 0)

	c.RateLimitLimit = getInt("RATE_LIMIT_LIMIT", 30)
	c.RateLimitWindow = getDuration("RATE_LIMIT_WINDOW", time.Minute)

	c.AdminEmail = getEnv("ADMIN_EMAIL", "")
	c.MailjetAPIKeyPublic = getEnv("MAILJET_APIKEY_PUBLIC", "")
	c.MailjetSecret = getEnv("MAILJET_SECRET", "")
	c.MailjetSMSToken = getEnv("MAILJET_SMS_TOKEN", "")
	c.MailjetAPIURL = strings.TrimRight(getEnv("MAILJET_API_URL", "https://api.mailjet.com"), "/")
	c.ProviderTimeout = getDuration("PROVIDER_TIMEOUT", 0)

	c.MailSenderEmail = getEnv("MAIL_SENDER_EMAIL", "")
	c.MailSenderName = getEnv("MAIL_SENDER_NAME", "")
	c.MailDisableTracking = getBool("MAIL_DISABLE_TRACKING", true)
	c.SMSSender = getEnv("SMS_SENDER", "")

	c.TemplateAllowList = splitCSV(getEnv("TEMPLATE_WHITELISTS", ""))
	c.NumRecipients = getInt("NUM_RECIPIENTS", 1)
	c.VarMaxSize = getInt("VAR_MAX_SIZE", 0)

	// An explicitly empty TEL_PATTERN lifts the restriction, so it can't go through getEnv.
	c.TelPattern = DefaultTelPattern
	if v, ok := os.LookupEnv("TEL_PATTERN"); ok {
		c.TelPattern = v
	}
	if c.TelPattern != "" {
		// Anchor at the start only: the trailing anchor is part of the configured pattern.
		re, err := regexp.Compile(`^(?:` + c.TelPattern + `)`)
		if err != nil {
			return c, fmt.Errorf("invalid TEL_PATTERN %q: %w", c.TelPattern, err)
		}
		c.TelPatternRE = re
	}

	c.SMSTemplates = smsTemplates(os.Environ())

	return c, nil
}

// EmailReady reports whether the email channel has its provider credentials.
func (c Config) EmailReady() bool {
	return c.MailjetAPIKeyPublic != "" && c.MailjetSecret != ""
}

// SMSReady reports whether the SMS channel has a token and at least one template.
func (c Config) SMSReady() bool {
	return c.MailjetSMSToken != "" && len(c.SMSTemplates) > 0
}

// SMSTemplateIDs returns the configured SMS template ids, sorted.
func (c Config) SMSTemplateIDs() []string {
	ids := make([]string, 0, len(c.SMSTemplates))
	for id := range c.SMSTemplates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func smsTemplates(environ []string) map[string]string {
	res := map[string]string{}
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, SMSTemplatePrefix) {
			continue
		}
		id := strings.TrimPrefix(key, SMSTemplatePrefix)
		if id == "" || value == "" {
			continue
		}
		res[id] = value
	}
	return res
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}

func (c Config) String() string {
	return fmt.Sprintf("env=%s addr=%s redis=%s/%d templates=%d sms_templates=%d recipients=%d var_max=%d tel_pattern=%q email_ready=%t sms_ready=%t",
		c.AppEnv, c.AppAddr, c.RedisAddr, c.RedisDB, len(c.TemplateAllowList), len(c.SMSTemplates),
		c.NumRecipients, c.VarMaxSize, c.TelPattern, c.EmailReady(), c.SMSReady())
}
