package middleware

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
)

// FlashLevel is the severity of a one-shot notice.
type FlashLevel string

const (
	FlashSuccess FlashLevel = "success"
	FlashError   FlashLevel = "error"
	FlashInfo    FlashLevel = "info"
	FlashWarning FlashLevel = "warning"
)

// Flash is a notice shown once on the next rendered page.
type Flash struct {
	Level   FlashLevel `json:"l"`
	Message string     `json:"m"`
}

const (
	flashCookieName  = "wyr_flash"
	flashPendingKey  = "flash_pending"
	flashConsumedKey = "flash_consumed"
	flashMaxAge      = 5 * time.Minute
)

// SetFlash queues a notice for the current response and any redirect that follows it.
func SetFlash(c *fiber.Ctx, level FlashLevel, message string) {
	pending := append(pendingFlashes(c), Flash{Level: level, Message: message})
	c.Locals(flashPendingKey, pending)

	all := append(incomingFlashes(c), pending...)
	writeFlashCookie(c, all)
}

// ConsumeFlashes returns every queued notice and clears the flash cookie.
func ConsumeFlashes(c *fiber.Ctx) []Flash {
	all := append(incomingFlashes(c), pendingFlashes(c)...)
	c.Locals(flashConsumedKey, true)
	c.Locals(flashPendingKey, []Flash(nil))

	if c.Cookies(flashCookieName) != "" || len(all) > 0 {
		c.Cookie(&fiber.Cookie{
			Name:     flashCookieName,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	return all
}

func pendingFlashes(c *fiber.Ctx) []Flash {
	pending, _ := c.Locals(flashPendingKey).([]Flash)
	return pending
}

func incomingFlashes(c *fiber.Ctx) []Flash {
	if consumed, _ := c.Locals(flashConsumedKey).(bool); consumed {
		return nil
	}
	raw := c.Cookies(flashCookieName)
	if raw == "" {
		return nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(decoded, &flashes); err != nil {
		return nil
	}
	return flashes
}

func writeFlashCookie(c *fiber.Ctx, flashes []Flash) {
	payload, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		Expires:  time.Now().Add(flashMaxAge),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
