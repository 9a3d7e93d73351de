package webtests

import (
	"github.com/stretchr/testify/assert"

	"github.com/demowebapp/browser-contract-tests/servicedef"
)

func DoButtonClickTests(t *T) {
	for _, kind := range t.Env().Kinds {
		kind := kind
		t.Run(kind.String(), func(t *T) {
			session := t.RequireSession(kind)
			t.RequireNavigate(session, t.Env().Host.BaseURL())

			assert.Equal(t, servicedef.InitialHeaderText, t.RequireText(session, servicedef.HeaderID))

			t.RequireClick(session, servicedef.ButtonID)
			t.AwaitElementText(session, servicedef.HeaderID, servicedef.ClickedText, t.Env().WaitTimeout)
		})
	}
}
