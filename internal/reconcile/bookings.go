package reconcile

import (
	"sort"
	"strings"
	"time"

	"github.com/xavierca1/lead-reconciliation/internal/entity"
)

var bookingLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// BookingLocation é o fuso da academia, usado quando o início vem sem fuso ou em epoch.
var BookingLocation = time.Local

// CleanBookings deduplica agendamentos por (matricula, evento) ficando com o mais recente
// pelo início, e deriva DATA, HORA, ATENDENTE e a divisão do aluno/acompanhante.
// events vazio = não filtra tipo de treino.
func CleanBookings(bookings *entity.Dataset, events []string) *entity.Dataset {
	return CleanBookingsIn(bookings, events, BookingLocation)
}

// CleanBookingsIn é CleanBookings com o fuso explícito para DATA, HORA e ATENDENTE.
func CleanBookingsIn(bookings *entity.Dataset, events []string, loc *time.Location) *entity.Dataset {
	if loc == nil {
		loc = time.UTC
	}
	out := &entity.Dataset{Columns: append([]string(nil), entity.BookingColumns...)}
	if bookings.Len() == 0 {
		return out
	}

	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		allowed[e] = true
	}

	type row struct {
		rec   entity.Record
		start time.Time
		ok    bool
	}
	rows := make([]row, 0, bookings.Len())
	for _, rec := range bookings.Records {
		if len(allowed) > 0 && !allowed[rec.String(entity.FieldBookingEvent)] {
			continue
		}
		start, ok := parseBookingStart(rec[entity.FieldBookingStart], loc)
		rows = append(rows, row{rec: rec, start: start, ok: ok})
	}

	// início ilegível vai para o começo, como NaT no sort ascendente
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ok != rows[j].ok {
			return !rows[i].ok
		}
		return rows[i].start.Before(rows[j].start)
	})

	last := make(map[string]int, len(rows))
	for i, r := range rows {
		last[bookingKey(r.rec)] = i
	}

	for i, r := range rows {
		if last[bookingKey(r.rec)] != i {
			continue
		}
		out.Records = append(out.Records, cleanBooking(r.rec, r.start, r.ok))
	}

	return out
}

func bookingKey(rec entity.Record) string {
	return rec.String(entity.FieldBookingEnrollment) + "\x00" + rec.String(entity.FieldBookingEvent)
}

func cleanBooking(rec entity.Record, start time.Time, ok bool) entity.Record {
	student := rec.String(entity.FieldBookingStudent)
	if student == "" {
		student = rec.String(entity.FieldBookingStudentAlt)
	}
	principal, companion, people := splitStudent(student)

	clean := entity.Record{
		entity.ColEnrollment:  rec[entity.FieldBookingEnrollment],
		entity.ColStudent:     nilIfEmpty(student),
		entity.ColMainStudent: principal,
		entity.ColCompanion:   companion,
		entity.ColPeople:      people,
		entity.ColEventType:   rec[entity.FieldBookingEvent],
		entity.ColAttendant:   "",
		entity.ColDate:        "",
		entity.ColHour:        "",
	}

	if ok {
		clean[entity.ColDate] = start.Format("02/01/2006")
		clean[entity.ColHour] = start.Format("15:04")
		clean[entity.ColAttendant] = attendantFor(start)
	}
	return clean
}

// attendantFor: manhã (antes das 12h) é a ATENDENTE 1, o resto a ATENDENTE 2.
func attendantFor(start time.Time) string {
	if start.Hour() < 12 {
		return entity.AttendantMorning
	}
	return entity.AttendantAfternoon
}

// splitStudent separa "Fulano, Ciclano" em principal e acompanhante.
func splitStudent(name string) (string, string, int) {
	if strings.TrimSpace(name) == "" {
		return "", "", 0
	}
	parts := strings.SplitN(name, ",", 2)
	principal := strings.TrimSpace(parts[0])
	if len(parts) == 1 {
		return principal, "", 1
	}
	companion := strings.TrimSpace(parts[1])
	if companion == "" {
		return principal, "", 1
	}
	return principal, companion, 2
}

func parseBookingStart(v any, loc *time.Location) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.In(loc), !t.IsZero()
	case float64:
		return fromMillis(int64(t), loc)
	case int64:
		return fromMillis(t, loc)
	case string:
		return parseDateText(t, bookingLayouts, loc)
	}
	return time.Time{}, false
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
