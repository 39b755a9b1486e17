package workflow

import (
	"fmt"
	"strings"

	"github.com/medops-hub/workorder-service/internal/domain"
)

// Locale selects the display language.
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleArabic  Locale = "ar"
)

// DefaultLocale is used when the requested locale has no table.
const DefaultLocale = LocaleEnglish

var displayNames = map[Locale]map[domain.WorkOrderStatus]string{
	LocaleEnglish: {
		domain.StatusPending:                   "Pending",
		domain.StatusAssigned:                  "Assigned",
		domain.StatusInProgress:                "In Progress",
		domain.StatusPendingSupervisorApproval: "Pending Supervisor Approval",
		domain.StatusPendingEngineerReview:     "Pending Engineer Review",
		domain.StatusPendingReporterClosure:    "Pending Reporter Closure",
		domain.StatusCompleted:                 "Completed",
		domain.StatusCancelled:                 "Cancelled",
		domain.StatusAutoClosed:                "Auto Closed",
		domain.StatusRejectedByTechnician:      "Rejected by Technician",
		domain.StatusRejectedBySupervisor:      "Rejected by Supervisor",
		domain.StatusRejectedByEngineer:        "Rejected by Engineer",
		domain.StatusNeedsRedirection:          "Needs Redirection",
		domain.StatusCustomerApproved:          "Approved by Reporter",
		domain.StatusCustomerRejected:          "Rejected by Reporter",
	},
	LocaleArabic: {
		domain.StatusPending:                   "قيد الانتظار",
		domain.StatusAssigned:                  "تم التعيين",
		domain.StatusInProgress:                "قيد التنفيذ",
		domain.StatusPendingSupervisorApproval: "بانتظار موافقة المشرف",
		domain.StatusPendingEngineerReview:     "بانتظار مراجعة المهندس",
		domain.StatusPendingReporterClosure:    "بانتظار إغلاق المُبلِّغ",
		domain.StatusCompleted:                 "مكتمل",
		domain.StatusCancelled:                 "ملغى",
		domain.StatusAutoClosed:                "مغلق تلقائياً",
		domain.StatusRejectedByTechnician:      "مرفوض من الفني",
		domain.StatusRejectedBySupervisor:      "مرفوض من المشرف",
		domain.StatusRejectedByEngineer:        "مرفوض من المهندس",
		domain.StatusNeedsRedirection:          "يحتاج إلى إعادة توجيه",
		domain.StatusCustomerApproved:          "معتمد من المُبلِّغ",
		domain.StatusCustomerRejected:          "مرفوض من المُبلِّغ",
	},
}

var statusColors = map[domain.WorkOrderStatus]string{
	domain.StatusPending:                   "#F59E0B",
	domain.StatusAssigned:                  "#3B82F6",
	domain.StatusInProgress:                "#6366F1",
	domain.StatusPendingSupervisorApproval: "#F97316",
	domain.StatusPendingEngineerReview:     "#8B5CF6",
	domain.StatusPendingReporterClosure:    "#06B6D4",
	domain.StatusCompleted:                 "#10B981",
	domain.StatusCancelled:                 "#6B7280",
	domain.StatusAutoClosed:                "#14B8A6",
	domain.StatusRejectedByTechnician:      "#EF4444",
	domain.StatusRejectedBySupervisor:      "#DC2626",
	domain.StatusRejectedByEngineer:        "#B91C1C",
	domain.StatusNeedsRedirection:          "#EAB308",
	domain.StatusCustomerApproved:          "#22C55E",
	domain.StatusCustomerRejected:          "#F43F5E",
}

func init() {
	for _, s := range domain.AllStatuses {
		for locale, names := range displayNames {
			if names[s] == "" {
				panic(fmt.Sprintf("workflow: no %s display name for status %q", locale, s))
			}
		}
		if statusColors[s] == "" {
			panic(fmt.Sprintf("workflow: no color for status %q", s))
		}
	}
}

// ParseLocale maps a language tag such as "ar-SA" to a supported locale.
func ParseLocale(raw string) Locale {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if len(raw) >= 2 {
		if _, ok := displayNames[Locale(raw[:2])]; ok {
			return Locale(raw[:2])
		}
	}
	return DefaultLocale
}

// DisplayName returns the localized label for status.
func DisplayName(status domain.WorkOrderStatus, locale Locale) string {
	mustKnow(status)
	names, ok := displayNames[locale]
	if !ok {
		names = displayNames[DefaultLocale]
	}
	return names[status]
}

// Color returns the hex color used to render status.
func Color(status domain.WorkOrderStatus) string {
	mustKnow(status)
	return statusColors[status]
}

// Locales lists the supported locales.
func Locales() []Locale {
	return []Locale{LocaleEnglish, LocaleArabic}
}
