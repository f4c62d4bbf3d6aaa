package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"

	"github.com/smarttransit/bus-booking/internal/models"
)

const (
	ticketMin = 100000
	ticketMax = 999999

	// maxTicketAttempts bounds regeneration after a ticket number collision
	maxTicketAttempts = 5
)

var ticketPattern = regexp.MustCompile(`^TICKET-\d{6}$`)

// IsTicketNumber reports whether s has the TICKET-NNNNNN shape
func IsTicketNumber(s string) bool {
	return ticketPattern.MatchString(s)
}

// TicketGenerator produces candidate ticket numbers
type TicketGenerator interface {
	NewTicketNumber() (string, error)
}

// RandomTicketGenerator draws six-digit ticket numbers from crypto/rand
type RandomTicketGenerator struct{}

// NewTicketNumber returns TICKET- followed by a number in [100000, 999999]
func (RandomTicketGenerator) NewTicketNumber() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(ticketMax-ticketMin+1))
	if err != nil {
		return "", fmt.Errorf("failed to generate ticket number: %w", err)
	}
	return fmt.Sprintf("%s%06d", models.TicketPrefix, ticketMin+n.Int64()), nil
}
