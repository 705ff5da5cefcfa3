package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/resend/resend-go/v2"

	"elite-coaching/config"
	"elite-coaching/models"
	"elite-coaching/plans"
)

// Notifier sends the site's transactional emails. All sends are best
// effort: call sites log failures and move on.
type Notifier interface {
	SendPaymentSuccess(ctx context.Context, clientEmail, clientName string, amount int64, currency, planName, gateway string) error
	SendCoachPaymentNotification(ctx context.Context, clientName, clientEmail string, amount int64, currency, planName, gateway string) error
	SendCoachProtocolDetails(ctx context.Context, lead *models.Lead, amount int64, currency, gateway string) error
	SendLeadNotification(ctx context.Context, lead *models.Lead) error
	SendContactNotifications(ctx context.Context, msg *models.ContactMessage) error
}

// EmailService sends emails through the Resend API.
type EmailService struct {
	client        *resend.Client
	from          string
	coach         string
	photosBaseURL string
}

func NewEmailService(cfg config.EmailConfig, photosBaseURL string) *EmailService {
	return &EmailService{
		client:        resend.NewClient(cfg.ResendAPIKey),
		from:          cfg.FromAddress,
		coach:         cfg.CoachAddress,
		photosBaseURL: photosBaseURL,
	}
}

func (s *EmailService) send(ctx context.Context, to, subject, html string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}
	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// FormatAmount renders DZD as whole dinars and everything else as
// dollars from minor units.
func FormatAmount(amount int64, currency string) string {
	if strings.EqualFold(currency, "DZD") {
		return fmt.Sprintf("%d DZD", amount)
	}
	return fmt.Sprintf("$%.2f", float64(amount)/100)
}

func (s *EmailService) SendPaymentSuccess(ctx context.Context, clientEmail, clientName string, amount int64, currency, planName, gateway string) error {
	html := fmt.Sprintf(`
      <div style="font-family: Arial, sans-serif; background: #0a0a0a; color: #fff; padding: 40px; max-width: 600px; margin: 0 auto;">
        <h1 style="color: #e8c97e; font-size: 28px; text-transform: uppercase; letter-spacing: 4px;">AYOUB CMB</h1>
        <h2 style="color: #fff; font-size: 20px;">Payment Confirmed</h2>
        <p style="color: #aaa;">Hi %s,</p>
        <p style="color: #aaa;">Your payment has been successfully processed. Welcome to the elite.</p>
        <div style="background: #1a1a1a; border-left: 4px solid #e8c97e; padding: 20px; margin: 24px 0;">
          <p style="margin: 0; color: #e8c97e; font-weight: bold; text-transform: uppercase; letter-spacing: 2px;">Plan: %s</p>
          <p style="margin: 8px 0 0; color: #fff; font-size: 22px; font-weight: bold;">%s</p>
          <p style="margin: 8px 0 0; color: #aaa; font-size: 12px; text-transform: uppercase;">via %s</p>
        </div>
        <p style="color: #aaa;">Coach Ayoub will contact you within 48 hours to begin your onboarding process.</p>
      </div>`,
		clientName, planName, FormatAmount(amount, currency), strings.ToUpper(gateway))

	return s.send(ctx, clientEmail, fmt.Sprintf("Payment Confirmed — %s", planName), html)
}

func (s *EmailService) SendCoachPaymentNotification(ctx context.Context, clientName, clientEmail string, amount int64, currency, planName, gateway string) error {
	html := fmt.Sprintf(`
      <div style="font-family: Arial, sans-serif; background: #0a0a0a; color: #fff; padding: 40px; max-width: 600px; margin: 0 auto;">
        <h1 style="color: #e8c97e; font-size: 28px; text-transform: uppercase; letter-spacing: 4px;">NEW PAYMENT</h1>
        <div style="background: #1a1a1a; border-left: 4px solid #e8c97e; padding: 20px; margin: 24px 0;">
          <p style="margin: 0; color: #e8c97e; font-weight: bold;">Client: %s</p>
          <p style="margin: 8px 0 0; color: #aaa;">Email: %s</p>
          <p style="margin: 8px 0 0; color: #fff; font-weight: bold;">Plan: %s</p>
          <p style="margin: 8px 0 0; color: #fff; font-size: 22px; font-weight: bold;">%s</p>
          <p style="margin: 8px 0 0; color: #aaa; font-size: 12px; text-transform: uppercase;">via %s</p>
        </div>
        <p style="color: #aaa;">Contact this client within 48 hours to begin onboarding.</p>
      </div>`,
		clientName, clientEmail, planName, FormatAmount(amount, currency), strings.ToUpper(gateway))

	return s.send(ctx, s.coach, fmt.Sprintf("New Payment — %s — %s", clientName, planName), html)
}

// SendCoachProtocolDetails sends the coach the full applicant profile
// after a paid order that carried a lead id. Used instead of the plain
// payment notification when the lead is known.
func (s *EmailService) SendCoachProtocolDetails(ctx context.Context, lead *models.Lead, amount int64, currency, gateway string) error {
	html := fmt.Sprintf(`
      <div style="font-family: sans-serif; max-width: 600px; padding: 20px;">
        <h2 style="color: #F7E025; background: #000; padding: 10px;">PAID ATHLETE PROTOCOL</h2>
        <p>A new athlete has paid %s via %s.</p>
        <div style="border: 2px solid #000; padding: 15px; margin-top: 20px;">
          <h3>Athlete Details</h3>
          <p><strong>Name:</strong> %s</p>
          <p><strong>Email:</strong> %s</p>
          <p><strong>Phone:</strong> %s</p>
          <p><strong>Height:</strong> %d cm</p>
          <p><strong>Weight:</strong> %d kg</p>
          <p><strong>Health Problems:</strong> %s</p>
        </div>
        <div style="background: #111; color: #fff; padding: 15px; margin-top: 15px; border-left: 5px solid #F7E025;">
          <p style="margin: 0; font-weight: bold; text-transform: uppercase; letter-spacing: 1px;">Selected Program:</p>
          <p style="margin: 5px 0 0; font-size: 18px; color: #F7E025;">%s</p>
        </div>
        <p style="margin-top: 20px;"><strong>Physique Photos:</strong><br/>%s</p>
        <p style="font-size: 12px; color: #666; margin-top: 40px;">Lead ID: %s</p>
      </div>`,
		FormatAmount(amount, currency), strings.ToUpper(gateway),
		lead.FullName, lead.Email, orDefault(lead.Phone, "N/A"),
		lead.HeightCm, lead.WeightKg, orDefault(lead.HealthProblems, "None"),
		plans.Name(lead.PlanID), s.photoLinks(lead.PhysiquePhotos), lead.ID)

	return s.send(ctx, s.coach, fmt.Sprintf("PAID CLIENT PROTOCOL: %s", lead.FullName), html)
}

// SendLeadNotification tells the coach a new applicant finished the
// onboarding form and is heading to payment.
func (s *EmailService) SendLeadNotification(ctx context.Context, lead *models.Lead) error {
	html := fmt.Sprintf(`
      <div style="font-family: sans-serif; max-width: 600px; padding: 20px;">
        <h2 style="color: #F7E025; background: #000; padding: 10px;">NEW ATHLETE PROTOCOL SUBMITTED</h2>
        <p>A new athlete has filled out their info and is proceeding to payment.</p>
        <div style="border: 2px solid #000; padding: 15px; margin-top: 20px;">
          <h3>Athlete Details</h3>
          <p><strong>Name:</strong> %s</p>
          <p><strong>Email:</strong> %s</p>
          <p><strong>Phone:</strong> %s</p>
          <p><strong>Height:</strong> %d cm</p>
          <p><strong>Weight:</strong> %d kg</p>
          <p><strong>Health Problems:</strong> %s</p>
        </div>
        <div style="background: #111; color: #fff; padding: 15px; margin-top: 15px; border-left: 5px solid #F7E025;">
          <p style="margin: 0; font-weight: bold; text-transform: uppercase; letter-spacing: 1px;">Selected Program:</p>
          <p style="margin: 5px 0 0; font-size: 18px; color: #F7E025;">%s</p>
        </div>
        <p style="margin-top: 20px;"><strong>Physique Photos:</strong><br/>%s</p>
        <p style="font-size: 12px; color: #666; margin-top: 40px;">Lead ID: %s</p>
      </div>`,
		lead.FullName, lead.Email, orDefault(lead.Phone, "N/A"),
		lead.HeightCm, lead.WeightKg, orDefault(lead.HealthProblems, "None"),
		plans.Name(lead.PlanID), s.photoLinks(lead.PhysiquePhotos), lead.ID)

	return s.send(ctx, s.coach, fmt.Sprintf("NEW COACHING PROTOCOL: %s", lead.FullName), html)
}

// SendContactNotifications sends the contact-form pair: the coach gets
// the application, the applicant gets a confirmation. The two sends are
// independent; one failing does not stop the other.
func (s *EmailService) SendContactNotifications(ctx context.Context, msg *models.ContactMessage) error {
	coachHTML := fmt.Sprintf(`
      <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
        <h2 style="color: #F7E025; border-bottom: 4px solid #F7E025; padding-bottom: 10px;">NEW COACHING APPLICATION</h2>
        <div style="background: #0A0A0A; color: #FFFFFF; padding: 20px; margin: 20px 0;">
          <h3 style="color: #F7E025; margin-top: 0;">Applicant Details</h3>
          <p><strong>Name:</strong> %s</p>
          <p><strong>Email:</strong> %s</p>
          <p><strong>Experience Level:</strong> %s</p>
        </div>
        <div style="background: #121212; color: #FFFFFF; padding: 20px; margin: 20px 0;">
          <h3 style="color: #F7E025; margin-top: 0;">Primary Goal</h3>
          <p style="white-space: pre-wrap;">%s</p>
        </div>
        <div style="background: #0A0A0A; color: #FFFFFF; padding: 20px; margin: 20px 0;">
          <h3 style="color: #F7E025; margin-top: 0;">Message</h3>
          <p style="white-space: pre-wrap;">%s</p>
        </div>
      </div>`,
		msg.Name, msg.Email, msg.Experience, msg.Goal, msg.Message)

	applicantHTML := fmt.Sprintf(`
      <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
        <h2 style="color: #F7E025; border-bottom: 4px solid #F7E025; padding-bottom: 10px;">APPLICATION RECEIVED</h2>
        <p style="font-size: 16px; line-height: 1.6;">Hey <strong>%s</strong>,</p>
        <p style="font-size: 16px; line-height: 1.6;">Thanks for applying to join the elite. I've received your application and will personally review it within the next <strong>48 hours</strong>.</p>
        <div style="background: #0A0A0A; color: #FFFFFF; padding: 20px; margin: 20px 0;">
          <h3 style="color: #F7E025; margin-top: 0;">What Happens Next?</h3>
          <ol style="line-height: 1.8;">
            <li><strong>Application Review:</strong> I'll check your starting point and objectives.</li>
            <li><strong>Video Consultation:</strong> If we're a good fit, I'll schedule a 15-min call.</li>
            <li><strong>Onboarding:</strong> We'll gather your biometrics and release your initial program.</li>
          </ol>
        </div>
        <p style="font-size: 16px; line-height: 1.6;">- Ayoub</p>
      </div>`,
		msg.Name)

	var firstErr error
	if err := s.send(ctx, s.coach, fmt.Sprintf("New Coaching Application from %s", msg.Name), coachHTML); err != nil {
		firstErr = err
	}
	if err := s.send(ctx, msg.Email, "Application Received - Ayoub CMB Coaching", applicantHTML); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (s *EmailService) photoLinks(keys []string) string {
	if len(keys) == 0 {
		return "None"
	}
	links := make([]string, len(keys))
	for i, key := range keys {
		links[i] = fmt.Sprintf(`• <a href="%s/%s" target="_blank" style="color: #F7E025;">View Photo</a>`, s.photosBaseURL, key)
	}
	return strings.Join(links, "<br/>")
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
