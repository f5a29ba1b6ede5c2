// utils/mail.go
package utils

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/gomail.v2"
)

// sendMail delivers one plain-text email through the configured SMTP relay.
func sendMail(to, subject, body string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	smtpPort := 2525
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		fmt.Sscanf(portStr, "%d", &smtpPort)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", smtpUser)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	return d.DialAndSend(m)
}

// SendPasswordApprovedEmail tells the requester their new password is ready.
// The password itself is never emailed; it is viewable once in the app.
func SendPasswordApprovedEmail(email, fullName string) {
	subject := "Votre demande de mot de passe a été approuvée"
	body := fmt.Sprintf("Bonjour %s,\n\nVotre demande de changement de mot de passe a été approuvée.\nConnectez-vous à l'application pour consulter votre nouveau mot de passe. Il ne sera affiché qu'une seule fois.\n\nL'équipe support", fullName)

	if err := sendMail(email, subject, body); err != nil {
		log.Printf("Failed to send password approval email to %s: %v", email, err)
	}
}

// SendPasswordRejectedEmail tells the requester their request was declined.
func SendPasswordRejectedEmail(email, fullName, reason string) {
	subject := "Votre demande de mot de passe a été rejetée"
	if reason == "" {
		reason = "non précisé"
	}
	body := fmt.Sprintf("Bonjour %s,\n\nVotre demande de changement de mot de passe a été rejetée.\nMotif : %s\n\nL'équipe support", fullName, reason)

	if err := sendMail(email, subject, body); err != nil {
		log.Printf("Failed to send password rejection email to %s: %v", email, err)
	}
}
