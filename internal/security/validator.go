package security

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"chat-relay/internal/config"
)

// identifierPattern covers display names and room names: letters, digits,
// underscore and hyphen, no spaces.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9_\-]+$`)

// InputValidator handles input validation and sanitization.
type InputValidator struct {
	config *config.ServerConfig
}

// NewInputValidator creates a new input validator.
func NewInputValidator(cfg *config.ServerConfig) *InputValidator {
	return &InputValidator{config: cfg}
}

// ValidateUsername validates and sanitizes a display name.
func (v *InputValidator) ValidateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", fmt.Errorf("username cannot be empty")
	}
	if utf8.RuneCountInString(username) > v.config.MaxUsernameLength {
		return "", fmt.Errorf("username too long (max %d characters)", v.config.MaxUsernameLength)
	}
	if !identifierPattern.MatchString(username) {
		return "", fmt.Errorf("username contains invalid characters (only letters, numbers, _, - allowed)")
	}
	return username, nil
}

// ValidateRoomName validates and sanitizes a room name.
func (v *InputValidator) ValidateRoomName(roomName string) (string, error) {
	roomName = strings.TrimSpace(roomName)
	if roomName == "" {
		return "", fmt.Errorf("room name cannot be empty")
	}
	if utf8.RuneCountInString(roomName) > v.config.MaxRoomNameLength {
		return "", fmt.Errorf("room name too long (max %d characters)", v.config.MaxRoomNameLength)
	}
	if !identifierPattern.MatchString(roomName) {
		return "", fmt.Errorf("room name contains invalid characters (no spaces, only letters, numbers, _, - allowed)")
	}
	return roomName, nil
}

// ValidateMessage validates and sanitizes message text.
func (v *InputValidator) ValidateMessage(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("message cannot be empty")
	}
	if utf8.RuneCountInString(text) > v.config.MaxMessageLength {
		return "", fmt.Errorf("message too long (max %d characters)", v.config.MaxMessageLength)
	}
	text = strings.TrimSpace(text)
	// Escape HTML so the text is safe to render in the bundled web client.
	return html.EscapeString(text), nil
}
