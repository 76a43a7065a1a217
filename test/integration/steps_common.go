package integration

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/cucumber/godog"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	client       *http.Client
	response     *http.Response
	responseBody []byte
	envelope     envelope
	stockBefore  map[string]int64
}

type envelope struct {
	Notice *struct {
		Level   string `json:"level"`
		Message string `json:"message"`
	} `json:"notice"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

// NewStepsContext creates a new steps context with its own cookie jar.
func NewStepsContext(tc *TestContext) *StepsContext {
	jar, _ := cookiejar.New(nil)
	return &StepsContext{
		tc: tc,
		client: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		stockBefore: make(map[string]int64),
	}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	// Background steps
	sc.Step(`^a relief server is running$`, s.aReliefServerIsRunning)
	sc.Step(`^no aid has been distributed$`, s.noAidHasBeenDistributed)
	sc.Step(`^camp (\d+) holds (\d+) of resource (\d+)$`, s.campHoldsStock)

	// Session steps
	sc.Step(`^I log in as "([^"]*)" with password "([^"]*)"$`, s.iLogInAs)
	sc.Step(`^I am logged in as "([^"]*)"$`, s.iAmLoggedInAs)
	sc.Step(`^I log out$`, s.iLogOut)

	// Request steps
	sc.Step(`^I GET "([^"]*)"$`, s.iGET)
	sc.Step(`^I POST to "([^"]*)"$`, s.iPOSTEmpty)
	sc.Step(`^I POST to "([^"]*)" with:$`, s.iPOSTWith)
	sc.Step(`^I note the stock of camp (\d+) and resource (\d+)$`, s.iNoteTheStock)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the notice level should be "([^"]*)"$`, s.theNoticeLevelShouldBe)
	sc.Step(`^the notice should contain "([^"]*)"$`, s.theNoticeShouldContain)
	sc.Step(`^the error should be "([^"]*)"$`, s.theErrorShouldBe)
	sc.Step(`^the response data "([^"]*)" should be "([^"]*)"$`, s.theResponseDataShouldBe)

	// Store steps
	sc.Step(`^the stock of camp (\d+) and resource (\d+) should be (\d+)$`, s.theStockShouldBe)
	sc.Step(`^the stock of camp (\d+) and resource (\d+) should have (decreased|increased) by (\d+)$`, s.theStockShouldHaveChangedBy)
	sc.Step(`^(\d+) aid distributions? should exist$`, s.aidDistributionsShouldExist)
	sc.Step(`^a "([^"]*)" audit entry should say "([^"]*)"$`, s.anAuditEntryShouldSay)
}

// Background steps

func (s *StepsContext) aReliefServerIsRunning() error {
	// Server is already running via TestContext
	return nil
}

func (s *StepsContext) noAidHasBeenDistributed() error {
	return s.tc.DB.Exec(`DELETE FROM aid_distribution`).Error
}

func (s *StepsContext) campHoldsStock(campID, qty, resourceID int) error {
	return s.tc.DB.Exec(`
		INSERT INTO stocked_at (camp_id, resource_id, current_qty, reorder_level) VALUES (?, ?, ?, 0)
		ON CONFLICT (camp_id, resource_id) DO UPDATE SET current_qty = EXCLUDED.current_qty
	`, campID, resourceID, qty).Error
}

// Session steps

func (s *StepsContext) iLogInAs(username, password string) error {
	return s.post("/login", url.Values{"username": {username}, "password": {password}})
}

func (s *StepsContext) iAmLoggedInAs(username string) error {
	for _, a := range uiAccounts {
		if a.username == username {
			if err := s.iLogInAs(a.username, a.password); err != nil {
				return err
			}
			return s.theResponseStatusShouldBe(http.StatusOK)
		}
	}
	return fmt.Errorf("no test account %q", username)
}

func (s *StepsContext) iLogOut() error {
	return s.post("/logout", url.Values{})
}

// Request steps

func (s *StepsContext) iGET(path string) error {
	resp, err := s.client.Get(s.tc.Server.ServerURL + path)
	if err != nil {
		return err
	}
	return s.capture(resp)
}

func (s *StepsContext) iPOSTEmpty(path string) error {
	return s.post(path, url.Values{})
}

// iPOSTWith posts a two-column field/value table as a form.
func (s *StepsContext) iPOSTWith(path string, table *godog.Table) error {
	form := url.Values{}
	for _, row := range table.Rows {
		if len(row.Cells) != 2 {
			return fmt.Errorf("expected field | value rows")
		}
		form.Set(row.Cells[0].Value, row.Cells[1].Value)
	}
	return s.post(path, form)
}

func (s *StepsContext) post(path string, form url.Values) error {
	resp, err := s.client.PostForm(s.tc.Server.ServerURL+path, form)
	if err != nil {
		return err
	}
	return s.capture(resp)
}

func (s *StepsContext) capture(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	s.response = resp
	s.responseBody = body
	s.envelope = envelope{}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(body, &s.envelope); err != nil {
			return fmt.Errorf("malformed response %q: %w", body, err)
		}
	}
	return nil
}

func (s *StepsContext) iNoteTheStock(campID, resourceID int) error {
	qty, err := s.stock(campID, resourceID)
	if err != nil {
		return err
	}
	s.stockBefore[stockKey(campID, resourceID)] = qty
	return nil
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(status int) error {
	if s.response == nil {
		return fmt.Errorf("no response")
	}
	if s.response.StatusCode != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, s.response.StatusCode, s.responseBody)
	}
	return nil
}

func (s *StepsContext) theNoticeLevelShouldBe(level string) error {
	if s.envelope.Notice == nil {
		return fmt.Errorf("no notice in %s", s.responseBody)
	}
	if s.envelope.Notice.Level != level {
		return fmt.Errorf("expected notice level %q, got %q (%s)", level, s.envelope.Notice.Level, s.envelope.Notice.Message)
	}
	return nil
}

func (s *StepsContext) theNoticeShouldContain(text string) error {
	if s.envelope.Notice == nil {
		return fmt.Errorf("no notice in %s", s.responseBody)
	}
	if !strings.Contains(s.envelope.Notice.Message, text) {
		return fmt.Errorf("notice %q does not contain %q", s.envelope.Notice.Message, text)
	}
	return nil
}

func (s *StepsContext) theErrorShouldBe(kind string) error {
	if s.envelope.Error != kind {
		return fmt.Errorf("expected error %q, got %q: %s", kind, s.envelope.Error, s.responseBody)
	}
	return nil
}

func (s *StepsContext) theResponseDataShouldBe(field, expected string) error {
	var data map[string]interface{}
	if err := json.Unmarshal(s.envelope.Data, &data); err != nil {
		return fmt.Errorf("data is not an object: %s", s.envelope.Data)
	}
	v, ok := data[field]
	if !ok {
		return fmt.Errorf("data has no field %q: %s", field, s.envelope.Data)
	}
	if got := fmt.Sprint(v); got != expected {
		return fmt.Errorf("expected %s = %q, got %q", field, expected, got)
	}
	return nil
}

// Store steps

func (s *StepsContext) stock(campID, resourceID int) (int64, error) {
	var qty sql.NullInt64
	err := s.tc.DB.Raw(
		`SELECT current_qty FROM stocked_at WHERE camp_id = ? AND resource_id = ?`, campID, resourceID,
	).Row().Scan(&qty)
	if err != nil {
		return 0, err
	}
	return qty.Int64, nil
}

func stockKey(campID, resourceID int) string {
	return fmt.Sprintf("%d/%d", campID, resourceID)
}

func (s *StepsContext) theStockShouldBe(campID, resourceID int, expected int64) error {
	qty, err := s.stock(campID, resourceID)
	if err != nil {
		return err
	}
	if qty != expected {
		return fmt.Errorf("expected stock %d, got %d", expected, qty)
	}
	return nil
}

func (s *StepsContext) theStockShouldHaveChangedBy(campID, resourceID int, direction string, delta int64) error {
	before, ok := s.stockBefore[stockKey(campID, resourceID)]
	if !ok {
		return fmt.Errorf("stock of camp %d and resource %d was not noted", campID, resourceID)
	}
	if direction == "decreased" {
		delta = -delta
	}
	return s.theStockShouldBe(campID, resourceID, before+delta)
}

func (s *StepsContext) aidDistributionsShouldExist(expected int64) error {
	var count int64
	if err := s.tc.DB.Raw(`SELECT COUNT(*) FROM aid_distribution`).Row().Scan(&count); err != nil {
		return err
	}
	if count != expected {
		return fmt.Errorf("expected %d aid distributions, got %d", expected, count)
	}
	return nil
}

func (s *StepsContext) anAuditEntryShouldSay(msgid, message string) error {
	var count int64
	err := s.tc.DB.Raw(
		`SELECT COUNT(*) FROM audit_messages WHERE msgid = ? AND message = ?`, msgid, message,
	).Row().Scan(&count)
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("no %s audit entry says %q", msgid, message)
	}
	return nil
}
