package isapi_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/cardsync/internal/isapi"
	"github.com/agentstation/cardsync/internal/isapi/isapitest"
	"github.com/agentstation/cardsync/pkg/errors"
)

func TestBaseURL(t *testing.T) {
	tests := []struct {
		address string
		want    string
	}{
		{"10.0.0.5", "http://10.0.0.5/ISAPI/"},
		{" 10.0.0.5:8080 ", "http://10.0.0.5:8080/ISAPI/"},
		{"https://panel.local", "https://panel.local/ISAPI/"},
		{"http://127.0.0.1:8080/", "http://127.0.0.1:8080/ISAPI/"},
	}
	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			got, err := isapi.BaseURL(tt.address)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "   ", "ftp://panel", "http://"} {
		_, err := isapi.BaseURL(bad)
		assert.True(t, errors.IsValidationError(err), "address %q", bad)
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range []isapi.Status{isapi.NoMatch, isapi.LastPage, isapi.MorePages} {
		got, err := isapi.ParseStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := isapi.ParseStatus("MAYBE")
	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestCursor(t *testing.T) {
	c := isapi.FirstPage()
	assert.Equal(t, 0, c.Position)
	assert.Equal(t, 30, c.MaxResults)
	assert.Equal(t, 30, c.Next().Position)
	assert.Equal(t, 60, c.Next().Next().Position)
}

func TestSearchUsersPaging(t *testing.T) {
	panel := isapitest.New(t)
	for i := 1; i <= 31; i++ {
		panel.AddEmployee(fmt.Sprintf("user%d", i))
	}
	panel.AddEmployee("guard1")
	client := panel.Client(t)
	ctx := context.Background()

	page, err := client.SearchUsers(ctx, "user", isapi.FirstPage())
	require.NoError(t, err)
	assert.Equal(t, isapi.MorePages, page.Status)
	assert.Len(t, page.Items, 30)
	assert.Equal(t, 31, page.TotalMatches)
	assert.False(t, page.Done())

	page, err = client.SearchUsers(ctx, "user", isapi.FirstPage().Next())
	require.NoError(t, err)
	assert.Equal(t, isapi.LastPage, page.Status)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "user31", page.Items[0].EmployeeNo)
	assert.True(t, page.Done())

	page, err = client.SearchUsers(ctx, "nobody", isapi.FirstPage())
	require.NoError(t, err)
	assert.Equal(t, isapi.NoMatch, page.Status)
	assert.Empty(t, page.Items)
}

func TestSearchCards(t *testing.T) {
	panel := isapitest.New(t)
	panel.AddEmployee("user1", "2247063476", "1922104801")
	client := panel.Client(t)

	page, err := client.SearchCards(context.Background(), isapi.FirstPage())
	require.NoError(t, err)
	assert.Equal(t, isapi.LastPage, page.Status)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "2247063476", page.Items[0].CardNo)
	assert.Equal(t, "user1", page.Items[0].EmployeeNo)
}

func TestCounts(t *testing.T) {
	panel := isapitest.New(t)
	panel.AddEmployee("user1", "0000000001", "0000000002")
	panel.AddEmployee("user2", "0000000003")
	client := panel.Client(t)
	ctx := context.Background()

	users, err := client.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, users)

	cards, err := client.CountCards(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, cards)
}

func TestCreateEmployeePayload(t *testing.T) {
	panel := isapitest.New(t)
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.Local)
	client := panel.Client(t, isapi.WithClock(func() time.Time { return now }))

	require.NoError(t, client.CreateEmployee(context.Background(), "user1", "user1"))

	records := panel.UserRecords()
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "user1", rec.EmployeeNo)
	assert.Equal(t, "normal", rec.UserType)
	assert.False(t, rec.LocalUIRight)
	assert.Equal(t, []isapi.RightPlan{{DoorNo: 1}}, rec.RightPlan)
	assert.True(t, rec.Valid.Enable)
	assert.Equal(t, "2026-03-01T09:30:00", rec.Valid.BeginTime)
	assert.Equal(t, "2036-03-01T09:30:00", rec.Valid.EndTime)
	assert.Equal(t, "local", rec.Valid.TimeType)

	err := client.CreateEmployee(context.Background(), "user1", "user1")
	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "employeeNoAlreadyExist", apiErr.SubStatusCode)
}

func TestCreateAndDeleteCard(t *testing.T) {
	panel := isapitest.New(t)
	panel.AddEmployee("user1")
	client := panel.Client(t)
	ctx := context.Background()

	require.NoError(t, client.CreateCard(ctx, "85EF77B4", "user1"))
	assert.Equal(t, []string{"2247063476"}, panel.CardsOf("user1"))
	assert.Equal(t, "normalCard", panel.Cards()[0].CardType)

	require.NoError(t, client.DeleteCard(ctx, "2247063476"))
	assert.Empty(t, panel.CardNumbers())

	err := client.CreateCard(ctx, "not-hex", "user1")
	assert.True(t, errors.IsValidationError(err))
	assert.Equal(t, 1, panel.Calls(isapi.EndpointCardRecord))
}

func TestCreateCardSlotLimit(t *testing.T) {
	panel := isapitest.New(t)
	panel.AddEmployee("user1", "0000000001", "0000000002", "0000000003", "0000000004", "0000000005")
	client := panel.Client(t)

	err := client.CreateCard(context.Background(), "ff", "user1")
	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestDeleteEmployeeRemovesCards(t *testing.T) {
	panel := isapitest.New(t)
	panel.AddEmployee("user1", "0000000001", "0000000002")
	panel.AddEmployee("user2", "0000000003")
	client := panel.Client(t)

	require.NoError(t, client.DeleteEmployee(context.Background(), "user1"))
	assert.Equal(t, []string{"0000000003"}, panel.CardNumbers())
	assert.Len(t, panel.Employees(), 1)
}

func TestCreateCardHonorsDelay(t *testing.T) {
	panel := isapitest.New(t)
	panel.AddEmployee("user1")
	client := panel.Client(t, isapi.WithCardDelay(30*time.Millisecond))

	start := time.Now()
	require.NoError(t, client.CreateCard(context.Background(), "1", "user1"))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := client.CreateCard(ctx, "2", "user1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, panel.Calls(isapi.EndpointCardRecord))
}

func TestRequestShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/ISAPI/AccessControl/CardInfo/Delete", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"CardInfoDelCond":{"CardNoList":[{"cardNo":"0000000042"}]}}`, string(body))
		_, _ = w.Write([]byte(`{"statusCode":1,"statusString":"OK","subStatusCode":"ok"}`))
	}))
	defer server.Close()

	client, err := isapi.NewClient(server.URL, "admin", "secret")
	require.NoError(t, err)
	require.NoError(t, client.DeleteCard(context.Background(), "0000000042"))
}

func TestStatusEnvelopeFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"statusCode":4,"statusString":"Invalid Operation","subStatusCode":"notSupport"}`))
	}))
	defer server.Close()

	client, err := isapi.NewClient(server.URL, "admin", "secret")
	require.NoError(t, err)

	err = client.DeleteEmployee(context.Background(), "user1")
	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "notSupport", apiErr.SubStatusCode)
}

func TestUnknownSearchStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"CardInfoSearch":{"responseStatusStrg":"WAIT","totalMatches":0}}`))
	}))
	defer server.Close()

	client, err := isapi.NewClient(server.URL, "admin", "secret")
	require.NoError(t, err)

	_, err = client.SearchCards(context.Background(), isapi.FirstPage())
	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestServerErrorIsPanelUnavailable(t *testing.T) {
	panel := isapitest.New(t)
	panel.FailAfter(isapi.EndpointCardCount, 0)
	client := panel.Client(t)

	_, err := client.CountCards(context.Background())
	assert.True(t, errors.IsPanelUnavailable(err))

	_, err = client.CountCards(context.Background())
	assert.NoError(t, err)
}

func TestEmployeeFreeSlots(t *testing.T) {
	assert.Equal(t, 5, isapi.Employee{}.FreeSlots())
	assert.Equal(t, 2, isapi.Employee{NumOfCard: 3}.FreeSlots())
	assert.Equal(t, 0, isapi.Employee{NumOfCard: 5}.FreeSlots())
	assert.Equal(t, 0, isapi.Employee{NumOfCard: 7}.FreeSlots())
}
