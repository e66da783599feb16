package email

import (
	"fmt"
	"net/smtp"
)

// Service handles email sending via SMTP
type Service struct {
	host string
	port string
	from string
}

// NewService creates a new email service
func NewService(host, port, from string) *Service {
	return &Service{
		host: host,
		port: port,
		from: from,
	}
}

// SendOrderConfirmation sends an order confirmation email
func (s *Service) SendOrderConfirmation(to, orderID string, total int, items []OrderItem) error {
	subject := fmt.Sprintf("Order confirmed (#%s)", shortID(orderID))
	body := BuildOrderConfirmationBody(orderID, total, items)
	return s.send(to, subject, body)
}

// SendStatusUpdate sends a fulfillment progress email
func (s *Service) SendStatusUpdate(to, orderID, status string) error {
	subject := fmt.Sprintf("Order #%s is now %s", shortID(orderID), status)
	body := BuildStatusUpdateBody(orderID, status)
	return s.send(to, subject, body)
}

// SendCancellation sends an order cancellation email
func (s *Service) SendCancellation(to, orderID string) error {
	subject := fmt.Sprintf("Order #%s cancelled", shortID(orderID))
	body := BuildCancellationBody(orderID)
	return s.send(to, subject, body)
}

func shortID(orderID string) string {
	if len(orderID) > 8 {
		return orderID[:8]
	}
	return orderID
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}
