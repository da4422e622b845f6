package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/BruksfildServices01/salon-booking/internal/i18n"
)

type phrases struct {
	Subject  string
	Greeting string
	Lead     string
	Service  string
	When     string
	Notes    string
	Footer   string
}

var appointmentPhrases = map[Kind]map[string]phrases{
	KindAppointmentCreated: {
		"ua": {"Ваш запис прийнято", "Вітаємо", "Ми отримали ваш запис і скоро його підтвердимо.", "Послуга", "Дата та час", "Примітки", "До зустрічі в салоні!"},
		"en": {"Your booking was received", "Hello", "We have received your booking and will confirm it shortly.", "Service", "Date and time", "Notes", "See you at the salon!"},
		"pl": {"Otrzymaliśmy Twoją rezerwację", "Dzień dobry", "Otrzymaliśmy Twoją rezerwację i wkrótce ją potwierdzimy.", "Usługa", "Data i godzina", "Uwagi", "Do zobaczenia w salonie!"},
		"ru": {"Ваша запись принята", "Здравствуйте", "Мы получили вашу запись и скоро её подтвердим.", "Услуга", "Дата и время", "Примечания", "До встречи в салоне!"},
	},
	KindAppointmentConfirmed: {
		"ua": {"Ваш запис підтверджено", "Вітаємо", "Ваш запис підтверджено.", "Послуга", "Дата та час", "Примітки", "До зустрічі в салоні!"},
		"en": {"Your booking is confirmed", "Hello", "Your booking is confirmed.", "Service", "Date and time", "Notes", "See you at the salon!"},
		"pl": {"Twoja rezerwacja jest potwierdzona", "Dzień dobry", "Twoja rezerwacja została potwierdzona.", "Usługa", "Data i godzina", "Uwagi", "Do zobaczenia w salonie!"},
		"ru": {"Ваша запись подтверждена", "Здравствуйте", "Ваша запись подтверждена.", "Услуга", "Дата и время", "Примечания", "До встречи в салоне!"},
	},
	KindAppointmentCancelled: {
		"ua": {"Ваш запис скасовано", "Вітаємо", "Ваш запис було скасовано.", "Послуга", "Дата та час", "Примітки", "Будемо раді бачити вас знову."},
		"en": {"Your booking was cancelled", "Hello", "Your booking has been cancelled.", "Service", "Date and time", "Notes", "We hope to see you again."},
		"pl": {"Twoja rezerwacja została anulowana", "Dzień dobry", "Twoja rezerwacja została anulowana.", "Usługa", "Data i godzina", "Uwagi", "Mamy nadzieję, że wkrótce się zobaczymy."},
		"ru": {"Ваша запись отменена", "Здравствуйте", "Ваша запись была отменена.", "Услуга", "Дата и время", "Примечания", "Будем рады видеть вас снова."},
	},
}

var coursePhrases = map[string]phrases{
	"ua": {Subject: "Дякуємо за покупку курсу", Greeting: "Вітаємо", Lead: "Оплату отримано. Ви придбали курс", Footer: "Деталі доступу ми надішлемо окремо."},
	"en": {Subject: "Thank you for your course purchase", Greeting: "Hello", Lead: "Payment received. You have purchased the course", Footer: "Access details will follow in a separate e-mail."},
	"pl": {Subject: "Dziękujemy za zakup kursu", Greeting: "Dzień dobry", Lead: "Płatność otrzymana. Zakupiłeś kurs", Footer: "Szczegóły dostępu wyślemy osobno."},
	"ru": {Subject: "Спасибо за покупку курса", Greeting: "Здравствуйте", Lead: "Оплата получена. Вы приобрели курс", Footer: "Детали доступа мы пришлём отдельно."},
}

var appointmentTmpl = template.Must(template.New("appointment").Parse(`<!doctype html>
<html><body style="font-family:sans-serif">
<p>{{.P.Greeting}}{{if .Name}}, {{.Name}}{{end}}!</p>
<p>{{.P.Lead}}</p>
<table>
<tr><td><b>{{.P.Service}}</b></td><td>{{.Service}}</td></tr>
<tr><td><b>{{.P.When}}</b></td><td>{{.When}}</td></tr>
{{if .Notes}}<tr><td><b>{{.P.Notes}}</b></td><td>{{.Notes}}</td></tr>{{end}}
</table>
<p>{{.P.Footer}}</p>
</body></html>`))

var courseTmpl = template.Must(template.New("course").Parse(`<!doctype html>
<html><body style="font-family:sans-serif">
<p>{{.P.Greeting}}!</p>
<p>{{.P.Lead}} <b>{{.Course}}</b> ({{.Amount}}).</p>
<p>{{.P.Footer}}</p>
</body></html>`))

func renderAppointment(kind Kind, lang string, info AppointmentInfo) (Message, error) {
	byLang, ok := appointmentPhrases[kind]
	if !ok {
		return Message{}, fmt.Errorf("notify: unknown kind %q", kind)
	}
	p := byLang[i18n.Lang(lang)]

	var buf bytes.Buffer
	err := appointmentTmpl.Execute(&buf, map[string]any{
		"P":       p,
		"Name":    info.Name,
		"Service": info.ServiceName,
		"When":    info.Start.Format("02.01.2006 15:04"),
		"Notes":   info.Notes,
	})
	if err != nil {
		return Message{}, fmt.Errorf("notify: render %s: %w", kind, err)
	}

	return Message{Kind: kind, To: info.Email, Subject: p.Subject, HTML: buf.String()}, nil
}

func renderCourse(lang string, info CourseInfo) (Message, error) {
	p := coursePhrases[i18n.Lang(lang)]

	var buf bytes.Buffer
	err := courseTmpl.Execute(&buf, map[string]any{
		"P":      p,
		"Course": info.CourseName,
		"Amount": FormatAmount(info.Amount, info.Currency),
	})
	if err != nil {
		return Message{}, fmt.Errorf("notify: render course: %w", err)
	}

	return Message{Kind: KindCoursePurchased, To: info.Email, Subject: p.Subject, HTML: buf.String()}, nil
}

// FormatAmount renders minor units as "1234.50 UAH".
func FormatAmount(minor int, currency string) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, minor/100, minor%100, strings.ToUpper(currency))
}
