package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/h2non/gock.v1"

	"github.com/checkmate-ci/covcheck/internal/report"
)

func TestSend(t *testing.T) {
	defer gock.Off()

	gock.New("http://covcheck.local").Post("/coverage").Reply(200)

	var body []byte
	var observer gock.ObserverFunc = func(request *http.Request, mock gock.Mock) {
		if mock != nil {
			body, _ = io.ReadAll(request.Body)
		}
	}
	gock.Observe(observer)

	client := &http.Client{}
	gock.InterceptClient(client)

	n := &Notifier{URL: "http://covcheck.local/coverage", Client: client}
	sum := report.Summary{TotalLines: 8, CoveredLines: 6, TotalBranches: 4, CoveredBranches: 2}
	require.NoError(t, n.Send(context.TODO(), sum))

	var got report.Summary
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, 8, got.TotalLines)
	assert.Equal(t, 6, got.CoveredLines)
	assert.Equal(t, 4, got.TotalBranches)
	assert.Equal(t, 2, got.CoveredBranches)
}

func TestSendServerError(t *testing.T) {
	defer gock.Off()

	gock.New("http://covcheck.local").Post("/coverage").Reply(500)

	client := &http.Client{}
	gock.InterceptClient(client)

	n := &Notifier{URL: "http://covcheck.local/coverage", Client: client}
	err := n.Send(context.TODO(), report.Summary{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestSendWithoutURL(t *testing.T) {
	n := &Notifier{}
	assert.NoError(t, n.Send(context.TODO(), report.Summary{}))
}
