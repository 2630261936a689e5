package nudge

import "context"

type mockNotifier struct {
	called bool
	report Report
	err    error
}

func (m *mockNotifier) SendNudge(_ context.Context, r Report) error {
	m.called = true
	m.report = r
	return m.err
}
