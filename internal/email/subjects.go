package email

const (
	subjectContactMessageFmt          = "New contact message: %s"
	subjectAppointmentFmt             = "New appointment request from %s"
	subjectAppointmentConfirmationFmt = "Your appointment on %s is booked"
	subjectAppointmentReminderFmt     = "Reminder: your appointment on %s"
	subjectOrderFmt                   = "New order: %s"
)
