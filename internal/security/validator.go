package security

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"online-chat/internal/config"
)

var (
	validUsername  = regexp.MustCompile(`^[a-zA-Z0-9_\-]+$`)
	validRoomName  = regexp.MustCompile(`^[a-zA-Z0-9_\-]+$`)
	collapseSpaces = regexp.MustCompile(`\s+`)
)

// InputValidator handles input validation and sanitization
type InputValidator struct {
	config *config.ServerConfig
}

// NewInputValidator creates a new input validator
func NewInputValidator(config *config.ServerConfig) *InputValidator {
	return &InputValidator{
		config: config,
	}
}

// ValidateUsername validates and sanitizes username input
func (v *InputValidator) ValidateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)

	if username == "" {
		return "", fmt.Errorf("username cannot be empty")
	}

	if utf8.RuneCountInString(username) > v.config.MaxUsernameLength {
		return "", fmt.Errorf("username too long (max %d characters)", v.config.MaxUsernameLength)
	}

	if !validUsername.MatchString(username) {
		return "", fmt.Errorf("username contains invalid characters (only letters, numbers, _, - allowed)")
	}

	return username, nil
}

// ValidateMessage validates and sanitizes message content
func (v *InputValidator) ValidateMessage(message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("message cannot be empty")
	}

	if utf8.RuneCountInString(message) > v.config.MaxMessageLength {
		return "", fmt.Errorf("message too long (max %d characters)", v.config.MaxMessageLength)
	}

	message = strings.TrimSpace(message)
	message = collapseSpaces.ReplaceAllString(message, " ")

	// Sanitize HTML to prevent XSS
	message = html.EscapeString(message)

	return message, nil
}

// ValidateRoomName validates and sanitizes room name
func (v *InputValidator) ValidateRoomName(roomName string) (string, error) {
	roomName = strings.TrimSpace(roomName)

	if roomName == "" {
		return "", fmt.Errorf("room name cannot be empty")
	}

	if utf8.RuneCountInString(roomName) > v.config.MaxRoomNameLength {
		return "", fmt.Errorf("room name too long (max %d characters)", v.config.MaxRoomNameLength)
	}

	if !validRoomName.MatchString(roomName) {
		return "", fmt.Errorf("room name contains invalid characters (only letters, numbers, _, - allowed)")
	}

	return roomName, nil
}
