// Package reminder contiene las reglas puras de los recordatorios de renovación:
// cálculo de días al vencimiento, elegibilidad ("due") y construcción del digest.
// Toda la aritmética de fechas recibe "today" explícito; nada lee el reloj del sistema.
package reminder

import (
	"sort"
	"time"

	"github.com/jhoicas/policyminders-api/internal/domain/entity"
)

// DateOf devuelve la fecha de calendario de t en loc, como medianoche UTC.
// Es la representación usada para end_date y "today" en todo el dominio.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CalendarDate normaliza una fecha ya de calendario (p. ej. un DATE de Postgres) a medianoche UTC.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysUntilExpiry diferencia en días de calendario entre endDate y today; independiente de la hora.
// Negativo si la póliza ya venció.
func DaysUntilExpiry(endDate, today time.Time) int {
	end := CalendarDate(endDate)
	start := CalendarDate(today)
	return int(end.Sub(start).Hours() / 24)
}

// SentOn informa si sentAt cae en la fecha de calendario today (en loc).
func SentOn(sentAt *time.Time, today time.Time, loc *time.Location) bool {
	if sentAt == nil {
		return false
	}
	return DateOf(*sentAt, loc).Equal(CalendarDate(today))
}

// LeadDays devuelve la anticipación configurada, con el valor por defecto si no hay una válida.
func LeadDays(p *entity.Policy) int {
	if p.ReminderLeadDays <= 0 {
		return entity.DefaultReminderLeadDays
	}
	return p.ReminderLeadDays
}

// IsDue una póliza está pendiente de recordatorio si faltan exactamente reminder_lead_days días
// y no se le envió recordatorio hoy. El control por fecha (y no por "hubo intento") permite
// re-ejecutar la pasada el mismo día y abrir un nuevo ciclo al año siguiente.
func IsDue(p *entity.Policy, today time.Time, loc *time.Location) bool {
	if p == nil {
		return false
	}
	if DaysUntilExpiry(p.EndDate, today) != LeadDays(p) {
		return false
	}
	return !SentOn(p.ReminderSentAt, today, loc)
}

// FilterDue devuelve las pólizas de policies que están pendientes en today.
func FilterDue(policies []*entity.Policy, today time.Time, loc *time.Location) []*entity.Policy {
	out := make([]*entity.Policy, 0, len(policies))
	for _, p := range policies {
		if IsDue(p, today, loc) {
			out = append(out, p)
		}
	}
	return out
}

// SortForDigest ordena in-place por end_date ascendente y, a igual fecha, por ID.
func SortForDigest(policies []*entity.Policy) {
	sort.SliceStable(policies, func(i, j int) bool {
		a, b := CalendarDate(policies[i].EndDate), CalendarDate(policies[j].EndDate)
		if !a.Equal(b) {
			return a.Before(b)
		}
		return policies[i].ID < policies[j].ID
	})
}

// GroupByOrganization agrupa las pólizas por organización. Las claves salen ordenadas
// para que el orden de envío de una pasada sea reproducible.
func GroupByOrganization(policies []*entity.Policy) (map[string][]*entity.Policy, []string) {
	groups := make(map[string][]*entity.Policy)
	var keys []string
	for _, p := range policies {
		if _, ok := groups[p.OrganizationID]; !ok {
			keys = append(keys, p.OrganizationID)
		}
		groups[p.OrganizationID] = append(groups[p.OrganizationID], p)
	}
	sort.Strings(keys)
	return groups, keys
}
