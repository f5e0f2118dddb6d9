//go:build e2e

package e2e

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/cucumber/godog"
)

// reviewPath is the route an origin application takes to payment_pending,
// with the actor that owns each edge.
var reviewPath = []struct {
	status string
	actor  string
}{
	{"submitted", "owner"},
	{"under_scrutiny", "dealing assistant"},
	{"forwarded_to_dtdo", "dealing assistant"},
	{"dtdo_review", "district officer"},
	{"inspection_scheduled", "district officer"},
	{"inspection_under_review", "district officer"},
	{"verified_for_payment", "district officer"},
	{"payment_pending", "district officer"},
}

func registerCommonSteps(sc *godog.ScenarioContext, tc *TestContext) {
	sc.Step(`^I am signed in as (?:the |an |a )?(owner|second owner|dealing assistant|district officer|other officer|admin)$`, func(actor string) error {
		tc.actor = actor
		return nil
	})
	sc.Step(`^the response status should be (\d+)$`, tc.expectStatus)
	sc.Step(`^the response error should be "([^"]*)"$`, func(code string) error {
		got, err := tc.stringField("error")
		if err != nil {
			return err
		}
		if got != code {
			return fmt.Errorf("expected error %q, got %q", code, got)
		}
		return nil
	})
	sc.Step(`^I call (GET|POST|PUT|DELETE) "([^"]*)" without a token$`, func(method, path string) error {
		return tc.send(method, path, nil, func(*http.Request) {})
	})
}

func registerApplicationSteps(sc *godog.ScenarioContext, tc *TestContext) {
	sc.Step(`^I create a (diamond|gold|silver) homestay "([^"]*)" with (\d+) single and (\d+) double rooms$`,
		func(category, name string, single, double int) error {
			if err := tc.request(http.MethodPost, "/applications", map[string]any{
				"propertyName":             name,
				"district":                 district,
				"category":                 category,
				"singleBedRooms":           single,
				"doubleBedRooms":           double,
				"certificateValidityYears": 1,
			}); err != nil {
				return err
			}
			if tc.status != http.StatusCreated {
				return nil
			}
			id, err := tc.stringField("id")
			tc.applicationID = id
			return err
		})

	sc.Step(`^I submit the application$`, func() error {
		return tc.request(http.MethodPost, tc.applicationPath("/submit"), nil)
	})

	sc.Step(`^I move the application to "([^"]*)"$`, func(status string) error {
		return tc.request(http.MethodPost, tc.applicationPath("/transitions"), map[string]any{"status": status})
	})

	sc.Step(`^I move the application to "([^"]*)" with feedback "([^"]*)"$`, func(status, feedback string) error {
		return tc.request(http.MethodPost, tc.applicationPath("/transitions"), map[string]any{"status": status, "feedback": feedback})
	})

	sc.Step(`^the application has been reviewed up to "([^"]*)"$`, func(target string) error {
		for _, step := range reviewPath {
			var err error
			if step.status == "submitted" {
				err = tc.requestAs(step.actor, http.MethodPost, tc.applicationPath("/submit"), nil)
			} else {
				err = tc.requestAs(step.actor, http.MethodPost, tc.applicationPath("/transitions"), map[string]any{"status": step.status})
			}
			if err != nil {
				return err
			}
			if err := tc.expectStatus(http.StatusOK); err != nil {
				return fmt.Errorf("moving to %s: %w", step.status, err)
			}
			if step.status == target {
				return nil
			}
		}
		return fmt.Errorf("%s is not on the review path", target)
	})

	sc.Step(`^the application status should be "([^"]*)"$`, func(want string) error {
		return tc.expectApplicationField(tc.applicationID, "status", want)
	})

	sc.Step(`^the parent application status should be "([^"]*)"$`, func(want string) error {
		return tc.expectApplicationField(tc.parentID, "status", want)
	})

	sc.Step(`^the parent application should have (\d+) rooms$`, func(want int) error {
		if err := tc.requestAs("owner", http.MethodGet, "/applications/"+tc.parentID, nil); err != nil {
			return err
		}
		got, err := tc.field("totalRooms")
		if err != nil {
			return err
		}
		if got != float64(want) {
			return fmt.Errorf("expected %d rooms, got %v", want, got)
		}
		return nil
	})

	sc.Step(`^the application should have a certificate number$`, func() error {
		if err := tc.requestAs("owner", http.MethodGet, tc.applicationPath(""), nil); err != nil {
			return err
		}
		number, err := tc.stringField("certificateNumber")
		if err != nil {
			return err
		}
		if number == "" {
			return fmt.Errorf("certificate number is empty")
		}
		return nil
	})

	sc.Step(`^the timeline should read "([^"]*)"$`, func(want string) error {
		if err := tc.requestAs("owner", http.MethodGet, tc.applicationPath("/actions"), nil); err != nil {
			return err
		}
		if err := tc.expectStatus(http.StatusOK); err != nil {
			return err
		}
		body, err := tc.json()
		if err != nil {
			return err
		}
		var got []string
		for _, a := range body["actions"].([]any) {
			got = append(got, a.(map[string]any)["action"].(string))
		}
		if strings.Join(got, ", ") != want {
			return fmt.Errorf("expected timeline %q, got %q", want, strings.Join(got, ", "))
		}
		return nil
	})

	sc.Step(`^the officer queue for "([^"]*)" should (not )?contain the application$`, func(d, negate string) error {
		if err := tc.request(http.MethodGet, "/officer/queue?district="+d, nil); err != nil {
			return err
		}
		if tc.status != http.StatusOK {
			if negate != "" {
				return nil
			}
			return tc.expectStatus(http.StatusOK)
		}
		found := strings.Contains(string(tc.body), tc.applicationID)
		if found == (negate != "") {
			return fmt.Errorf("queue membership for %s: found=%v: %s", tc.applicationID, found, tc.body)
		}
		return nil
	})

	sc.Step(`^I start the payment$`, func() error {
		if err := tc.request(http.MethodPost, tc.applicationPath("/payments"), nil); err != nil {
			return err
		}
		if err := tc.expectStatus(http.StatusCreated); err != nil {
			return err
		}
		id, err := tc.stringField("id")
		tc.paymentID = id
		return err
	})

	sc.Step(`^the payment amount should be "([^"]*)"$`, func(want string) error {
		got, err := tc.stringField("amount")
		if err != nil {
			return err
		}
		if got != want {
			return fmt.Errorf("expected amount %s, got %s", want, got)
		}
		return nil
	})

	sc.Step(`^the gateway (confirms|fails) the payment with reference "([^"]*)"$`, func(outcome, ref string) error {
		action := "confirm"
		if outcome == "fails" {
			action = "fail"
		}
		return tc.gateway("/payments/"+tc.paymentID+"/"+action, map[string]any{"gatewayReference": ref})
	})

	sc.Step(`^the (district officer|other officer) confirms the payment with reference "([^"]*)"$`, func(actor, ref string) error {
		return tc.requestAs(actor, http.MethodPost, "/officer/payments/"+tc.paymentID+"/confirm", map[string]any{"gatewayReference": ref})
	})

	sc.Step(`^the service center should offer (renewal|adding rooms|deleting rooms|category change|cancellation)$`, func(offer string) error {
		if err := tc.requestAs("owner", http.MethodGet, tc.applicationPath("/service-center"), nil); err != nil {
			return err
		}
		key := map[string]string{
			"renewal":         "canRenew",
			"adding rooms":    "canAddRooms",
			"deleting rooms":  "canDeleteRooms",
			"category change": "canChangeCategory",
			"cancellation":    "canCancel",
		}[offer]
		v, err := tc.field(key)
		if err != nil {
			return err
		}
		if v != true {
			return fmt.Errorf("service center does not offer %s: %s", offer, tc.body)
		}
		return nil
	})

	sc.Step(`^I request to add (\d+) single rooms?$`, func(n int) error {
		parent := tc.applicationID
		if tc.parentID != "" {
			parent = tc.parentID
		}
		if err := tc.request(http.MethodPost, "/applications/"+parent+"/service-requests", map[string]any{
			"applicationKind": "add_rooms",
			"delta":           map[string]int{"singleBedRooms": n},
		}); err != nil {
			return err
		}
		if tc.status != http.StatusCreated {
			return nil
		}
		id, err := tc.stringField("id")
		if err != nil {
			return err
		}
		tc.parentID, tc.applicationID = parent, id
		return nil
	})
}

func registerLegacySteps(sc *godog.ScenarioContext, tc *TestContext) {
	sc.Step(`^I save a legacy draft for "([^"]*)" with RC "([^"]*)" issued "([^"]*)" expiring "([^"]*)"$`,
		func(name, rc, issued, expires string) error {
			if err := tc.request(http.MethodPut, "/legacy/draft", map[string]any{
				"propertyName":   name,
				"district":       district,
				"category":       "silver",
				"singleBedRooms": 2,
				"rcNumber":       rc,
				"rcIssueDate":    issued,
				"rcExpiryDate":   expires,
			}); err != nil {
				return err
			}
			if tc.status != http.StatusOK {
				return nil
			}
			id, err := tc.stringField("id")
			tc.applicationID = id
			return err
		})

	sc.Step(`^I submit the legacy onboarding$`, func() error {
		return tc.request(http.MethodPost, "/legacy/"+tc.applicationID+"/submit", nil)
	})

	sc.Step(`^the (admin|district officer) (approves|rejects) the legacy onboarding$`, func(actor, decision string) error {
		return tc.requestAs(actor, http.MethodPost, "/legacy/"+tc.applicationID+"/review", map[string]any{
			"approve":  decision == "approves",
			"feedback": "reviewed",
		})
	})

	sc.Step(`^the certificate number should be "([^"]*)"$`, func(want string) error {
		return tc.expectApplicationField(tc.applicationID, "certificateNumber", want)
	})
}

func (tc *TestContext) expectApplicationField(id, field, want string) error {
	if err := tc.requestAs("owner", http.MethodGet, "/applications/"+id, nil); err != nil {
		return err
	}
	if err := tc.expectStatus(http.StatusOK); err != nil {
		return err
	}
	got, err := tc.stringField(field)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("expected %s %q, got %q", field, want, got)
	}
	return nil
}
