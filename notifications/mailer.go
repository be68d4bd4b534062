package notifications

import (
	"context"
	"embed"
	"fmt"
	"text/template"

	"github.com/medbridge/backend/helpers"
	"github.com/medbridge/backend/models"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

//go:embed templates/*.tmpl
var mailTemplates embed.FS

var templates = template.Must(template.ParseFS(mailTemplates, "templates/*.tmpl"))

const notAssigned = "Not assigned"

type mailKind struct {
	template string
	subject  string
	toDoctor bool
}

var mailKinds = map[models.NotificationKind]mailKind{
	models.NotificationPaymentReceipt: {
		template: "payment_receipt.tmpl",
		subject:  "Payment Receipt - MedBridge Appointment Booking",
	},
	models.NotificationDoctorConfirmation: {
		template: "doctor_confirmation.tmpl",
		subject:  "New Appointment Scheduled - MedBridge",
		toDoctor: true,
	},
	models.NotificationPatientConfirmation: {
		template: "patient_confirmation.tmpl",
		subject:  "Appointment Confirmed - MedBridge Healthcare",
	},
	models.NotificationPrescription: {
		template: "prescription.tmpl",
		subject:  "Your Prescription is Updated",
	},
}

// Records is the read access the mailer needs to build a message.
type Records interface {
	GetAppointmentByID(id int) (*models.Appointment, error)
	GetUserByID(id int) (*models.User, error)
}

type MailerConfig struct {
	EmailFrom     string
	NameFrom      string
	AttachReceipt bool
}

// Mailer renders and sends the mail for a notification task.
type Mailer struct {
	records Records
	sender  helpers.MailSender
	conf    MailerConfig
	logger  *log.Entry

	receiptPDF func(models.ReceiptPDFHTML) ([]byte, error)
}

func NewMailer(records Records, sender helpers.MailSender, conf MailerConfig, logger *log.Entry) *Mailer {
	return &Mailer{
		records: records,
		sender:  sender,
		conf:    conf,
		logger:  logger,
		receiptPDF: func(receipt models.ReceiptPDFHTML) ([]byte, error) {
			buf, err := helpers.GenerateReceiptPDF(receipt)
			if err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		},
	}
}

type mailView struct {
	AppointmentID  int
	PatientName    string
	PatientEmail   string
	PatientContact string
	DoctorName     string
	Date           string
	Status         models.AppointmentStatus
	Problem        string
	Price          string
	Amount         string
	PaymentID      string
	Prescription   string
}

func (m *Mailer) Handle(ctx context.Context, task Task) error {
	kind, ok := mailKinds[task.Kind]
	if !ok {
		return Permanent(errors.Errorf("unknown notification kind %q", task.Kind))
	}

	appointment, err := m.records.GetAppointmentByID(task.AppointmentID)
	if err != nil {
		return err
	}
	if appointment == nil {
		return Permanent(errors.Errorf("appointment %d not found", task.AppointmentID))
	}

	patient, err := m.records.GetUserByID(appointment.PatientID)
	if err != nil {
		return err
	}
	if patient == nil {
		return Permanent(errors.Errorf("patient %d not found", appointment.PatientID))
	}

	var doctor *models.User
	if appointment.DoctorID != 0 {
		if doctor, err = m.records.GetUserByID(appointment.DoctorID); err != nil {
			return err
		}
	}
	if kind.toDoctor && doctor == nil {
		return Permanent(errors.Errorf("appointment %d has no doctor", appointment.ID))
	}

	view := newMailView(appointment, patient, doctor, task)

	ed := helpers.EmailData{
		EmailTo:   patient.Email,
		NameTo:    patient.FullName(),
		EmailFrom: m.conf.EmailFrom,
		NameFrom:  m.conf.NameFrom,
		Subject:   kind.subject,
		Template:  templates.Lookup(kind.template),
		Sender:    m.sender,
	}
	if kind.toDoctor {
		ed.EmailTo = doctor.Email
		ed.NameTo = doctor.FullName()
	}

	if task.Kind == models.NotificationPaymentReceipt && m.conf.AttachReceipt {
		m.attachReceipt(&ed, view, task)
	}

	if err := ed.SendEmail(view); err != nil {
		if errors.Is(err, helpers.ErrEmptyRecipient) {
			return Permanent(err)
		}
		return err
	}
	return nil
}

func (m *Mailer) attachReceipt(ed *helpers.EmailData, view mailView, task Task) {
	content, err := m.receiptPDF(models.ReceiptPDFHTML{
		AppointmentID: view.AppointmentID,
		PatientName:   view.PatientName,
		DoctorName:    view.DoctorName,
		Date:          view.Date,
		Amount:        view.Amount,
		PaymentID:     task.PaymentID,
	})
	if err != nil {
		m.logger.WithError(err).WithField("appointment_id", task.AppointmentID).Warn("sending receipt without pdf")
		return
	}

	ed.FileName = fmt.Sprintf("receipt-%d.pdf", view.AppointmentID)
	ed.FileContent = content
}

func newMailView(appointment *models.Appointment, patient, doctor *models.User, task Task) mailView {
	view := mailView{
		AppointmentID:  appointment.ID,
		PatientName:    patient.FullName(),
		PatientEmail:   patient.Email,
		PatientContact: patient.Contact,
		DoctorName:     notAssigned,
		Date:           appointment.Date,
		Status:         appointment.Status,
		Problem:        appointment.Problem,
		Price:          fmt.Sprintf("%.2f", appointment.Price),
		Amount:         fmt.Sprintf("%.2f", appointment.Price),
		PaymentID:      task.PaymentID,
		Prescription:   appointment.Prescription,
	}
	if doctor != nil {
		view.DoctorName = doctor.FullName()
	}
	if task.Amount > 0 {
		view.Amount = fmt.Sprintf("%.2f", models.FromMinorUnits(task.Amount))
	}
	return view
}
