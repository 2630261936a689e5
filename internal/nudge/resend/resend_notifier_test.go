package resend

import (
	"strings"
	"testing"

	"github.com/brk3/habitbattles/internal/nudge"
)

func TestRender(t *testing.T) {
	r := nudge.Report{
		Expiring:  []string{"guitar", "<script>"},
		QuotaRisk: []nudge.QuotaRisk{{HabitName: "run", Remaining: 3, DaysLeft: 3}},
		HoursLeft: 2,
	}
	body, err := render(r)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"end in 2 hours", "<li>guitar</li>", "&lt;script&gt;", "run: 3 more in 3 days"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
	if subject(r) != "Streaks are expiring soon" {
		t.Errorf("subject = %q", subject(r))
	}
}

func TestRender_QuotaOnly(t *testing.T) {
	r := nudge.Report{QuotaRisk: []nudge.QuotaRisk{{HabitName: "run", Remaining: 2, DaysLeft: 2}}}
	body, err := render(r)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(body, "daily streaks") {
		t.Errorf("unexpected streak section:\n%s", body)
	}
	if subject(r) != "Weekly targets at risk" {
		t.Errorf("subject = %q", subject(r))
	}
}
