// Package isapitest provides an in-memory ISAPI access-control panel served
// over HTTP for tests.
package isapitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/agentstation/cardsync/internal/isapi"
	"github.com/agentstation/cardsync/internal/transport"
	"github.com/agentstation/cardsync/pkg/constants"
)

// Panel is a fake panel. Employees and cards keep insertion order, the way
// the device returns them.
type Panel struct {
	*httptest.Server

	mu        sync.Mutex
	employees []isapi.Employee
	cards     []isapi.Card
	calls     map[string]int
	failures  map[string]int
	records   []isapi.UserRecord
}

// New starts a fake panel that is closed when the test ends.
func New(t testing.TB) *Panel {
	t.Helper()

	p := &Panel{
		calls:    make(map[string]int),
		failures: make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /ISAPI/"+isapi.EndpointUserSearch, p.searchUsers)
	mux.HandleFunc("POST /ISAPI/"+isapi.EndpointCardSearch, p.searchCards)
	mux.HandleFunc("POST /ISAPI/"+isapi.EndpointUserRecord, p.recordUser)
	mux.HandleFunc("POST /ISAPI/"+isapi.EndpointCardRecord, p.recordCard)
	mux.HandleFunc("PUT /ISAPI/"+isapi.EndpointUserDelete, p.deleteUser)
	mux.HandleFunc("PUT /ISAPI/"+isapi.EndpointCardDelete, p.deleteCard)
	mux.HandleFunc("GET /ISAPI/"+isapi.EndpointUserCount, p.countUsers)
	mux.HandleFunc("GET /ISAPI/"+isapi.EndpointCardCount, p.countCards)

	p.Server = httptest.NewServer(p.intercept(mux))
	t.Cleanup(p.Close)
	return p
}

// Address returns the panel address to configure a client with.
func (p *Panel) Address() string {
	return p.URL
}

// Client returns an isapi client for this panel without pauses.
func (p *Panel) Client(t testing.TB, opts ...isapi.Option) *isapi.Client {
	t.Helper()
	opts = append([]isapi.Option{isapi.WithCardDelay(0)}, opts...)
	client, err := isapi.NewClient(p.Address(), "admin", "secret", opts...)
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}
	return client
}

// AddEmployee seeds an employee holding the given decimal card numbers.
func (p *Panel) AddEmployee(employeeNo string, cardNos ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.employees = append(p.employees, isapi.Employee{EmployeeNo: employeeNo, Name: employeeNo, UserType: isapi.UserTypeNormal})
	for _, no := range cardNos {
		p.cards = append(p.cards, isapi.Card{EmployeeNo: employeeNo, CardNo: no, CardType: isapi.CardTypeNormal})
	}
}

// Employees returns the employees with their current card counts.
func (p *Panel) Employees() []isapi.Employee {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.employeesLocked()
}

// Cards returns all cards in storage order.
func (p *Panel) Cards() []isapi.Card {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.cards)
}

// CardNumbers returns the decimal number of every card in storage order.
func (p *Panel) CardNumbers() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.cards))
	for _, c := range p.cards {
		out = append(out, c.CardNo)
	}
	return out
}

// CardsOf returns the decimal card numbers held by one employee.
func (p *Panel) CardsOf(employeeNo string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, c := range p.cards {
		if c.EmployeeNo == employeeNo {
			out = append(out, c.CardNo)
		}
	}
	return out
}

// UserRecords returns the bodies of every accepted UserInfo/Record call.
func (p *Panel) UserRecords() []isapi.UserRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.records)
}

// Calls returns how many requests reached an endpoint, for example
// isapi.EndpointCardSearch.
func (p *Panel) Calls(endpoint string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[endpoint]
}

// MutatingCalls returns the number of record and delete requests received.
func (p *Panel) MutatingCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[isapi.EndpointUserRecord] + p.calls[isapi.EndpointCardRecord] +
		p.calls[isapi.EndpointUserDelete] + p.calls[isapi.EndpointCardDelete]
}

// FailAfter makes the endpoint answer 500 once it has succeeded n more times.
func (p *Panel) FailAfter(endpoint string, n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[endpoint] = n + 1
}

func (p *Panel) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		endpoint := strings.TrimPrefix(r.URL.Path, "/ISAPI/")

		p.mu.Lock()
		p.calls[endpoint]++
		fail := false
		if n, ok := p.failures[endpoint]; ok {
			n--
			p.failures[endpoint] = n
			fail = n <= 0
			if fail {
				delete(p.failures, endpoint)
			}
		}
		p.mu.Unlock()

		if fail {
			writeStatus(w, http.StatusInternalServerError, 3, "Device Error", "deviceError")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (p *Panel) searchUsers(w http.ResponseWriter, r *http.Request) {
	var req isapi.UserSearchRequest
	if !decode(w, r, &req) {
		return
	}

	p.mu.Lock()
	var matched []isapi.Employee
	for _, e := range p.employeesLocked() {
		if req.UserInfoSearchCond.FuzzySearch == "" ||
			strings.Contains(e.EmployeeNo, req.UserInfoSearchCond.FuzzySearch) ||
			strings.Contains(e.Name, req.UserInfoSearchCond.FuzzySearch) {
			matched = append(matched, e)
		}
	}
	p.mu.Unlock()

	items, status := paginate(matched, req.UserInfoSearchCond)
	writeJSON(w, http.StatusOK, isapi.UserSearchResponse{UserInfoSearch: isapi.UserSearchResult{
		SearchID:           req.UserInfoSearchCond.SearchID,
		ResponseStatusStrg: status,
		NumOfMatches:       len(items),
		TotalMatches:       len(matched),
		UserInfo:           items,
	}})
}

func (p *Panel) searchCards(w http.ResponseWriter, r *http.Request) {
	var req isapi.CardSearchRequest
	if !decode(w, r, &req) {
		return
	}

	p.mu.Lock()
	all := slices.Clone(p.cards)
	p.mu.Unlock()

	items, status := paginate(all, req.CardInfoSearchCond)
	writeJSON(w, http.StatusOK, isapi.CardSearchResponse{CardInfoSearch: isapi.CardSearchResult{
		SearchID:           req.CardInfoSearchCond.SearchID,
		ResponseStatusStrg: status,
		NumOfMatches:       len(items),
		TotalMatches:       len(all),
		CardInfo:           items,
	}})
}

func (p *Panel) recordUser(w http.ResponseWriter, r *http.Request) {
	var req isapi.UserRecordRequest
	if !decode(w, r, &req) {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.employeeIndexLocked(req.UserInfo.EmployeeNo) >= 0 {
		writeStatus(w, http.StatusBadRequest, 6, "Invalid Content", "employeeNoAlreadyExist")
		return
	}
	p.employees = append(p.employees, isapi.Employee{
		EmployeeNo: req.UserInfo.EmployeeNo,
		Name:       req.UserInfo.Name,
		UserType:   req.UserInfo.UserType,
	})
	p.records = append(p.records, req.UserInfo)
	writeStatus(w, http.StatusOK, transport.StatusOK, "OK", "ok")
}

func (p *Panel) recordCard(w http.ResponseWriter, r *http.Request) {
	var req isapi.CardRecordRequest
	if !decode(w, r, &req) {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.employeeIndexLocked(req.CardInfo.EmployeeNo) < 0 {
		writeStatus(w, http.StatusBadRequest, 6, "Invalid Content", "employeeNoNotExist")
		return
	}
	held := 0
	for _, c := range p.cards {
		if c.CardNo == req.CardInfo.CardNo {
			writeStatus(w, http.StatusBadRequest, 6, "Invalid Content", "cardNoAlreadyExist")
			return
		}
		if c.EmployeeNo == req.CardInfo.EmployeeNo {
			held++
		}
	}
	if held >= constants.MaxCardsPerEmployee {
		writeStatus(w, http.StatusBadRequest, 6, "Invalid Content", "cardNumberExceeded")
		return
	}
	p.cards = append(p.cards, req.CardInfo)
	writeStatus(w, http.StatusOK, transport.StatusOK, "OK", "ok")
}

func (p *Panel) deleteUser(w http.ResponseWriter, r *http.Request) {
	var req isapi.UserDeleteRequest
	if !decode(w, r, &req) {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ref := range req.UserInfoDelCond.EmployeeNoList {
		p.employees = slices.DeleteFunc(p.employees, func(e isapi.Employee) bool {
			return e.EmployeeNo == ref.EmployeeNo
		})
		p.cards = slices.DeleteFunc(p.cards, func(c isapi.Card) bool {
			return c.EmployeeNo == ref.EmployeeNo
		})
	}
	writeStatus(w, http.StatusOK, transport.StatusOK, "OK", "ok")
}

func (p *Panel) deleteCard(w http.ResponseWriter, r *http.Request) {
	var req isapi.CardDeleteRequest
	if !decode(w, r, &req) {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ref := range req.CardInfoDelCond.CardNoList {
		p.cards = slices.DeleteFunc(p.cards, func(c isapi.Card) bool {
			return c.CardNo == ref.CardNo
		})
	}
	writeStatus(w, http.StatusOK, transport.StatusOK, "OK", "ok")
}

func (p *Panel) countUsers(w http.ResponseWriter, _ *http.Request) {
	p.mu.Lock()
	n := len(p.employees)
	p.mu.Unlock()

	var resp isapi.UserCountResponse
	resp.UserInfoCount.UserNumber = n
	writeJSON(w, http.StatusOK, resp)
}

func (p *Panel) countCards(w http.ResponseWriter, _ *http.Request) {
	p.mu.Lock()
	n := len(p.cards)
	p.mu.Unlock()

	var resp isapi.CardCountResponse
	resp.CardInfoCount.CardNumber = n
	writeJSON(w, http.StatusOK, resp)
}

func (p *Panel) employeesLocked() []isapi.Employee {
	out := make([]isapi.Employee, len(p.employees))
	for i, e := range p.employees {
		e.NumOfCard = 0
		for _, c := range p.cards {
			if c.EmployeeNo == e.EmployeeNo {
				e.NumOfCard++
			}
		}
		out[i] = e
	}
	return out
}

func (p *Panel) employeeIndexLocked(employeeNo string) int {
	return slices.IndexFunc(p.employees, func(e isapi.Employee) bool {
		return e.EmployeeNo == employeeNo
	})
}

func paginate[T any](all []T, cond isapi.SearchCond) ([]T, string) {
	maxResults := cond.MaxResults
	if maxResults <= 0 {
		maxResults = constants.PageSize
	}
	start := cond.SearchResultPosition
	if start >= len(all) {
		return nil, isapi.NoMatch.String()
	}
	end := min(start+maxResults, len(all))
	if end < len(all) {
		return all[start:end], isapi.MorePages.String()
	}
	return all[start:end], isapi.LastPage.String()
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeStatus(w, http.StatusBadRequest, 5, "Invalid XML Format", "badJsonFormat")
		return false
	}
	return true
}

func writeStatus(w http.ResponseWriter, httpStatus, code int, status, sub string) {
	writeJSON(w, httpStatus, transport.StatusEnvelope{
		RequestURL:    "",
		StatusCode:    code,
		StatusString:  status,
		SubStatusCode: sub,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
