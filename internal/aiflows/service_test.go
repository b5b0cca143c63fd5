package aiflows

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"terraflow_backend/platform/apperr"
	"terraflow_backend/platform/logger"
	"terraflow_backend/platform/validator"
)

// fakeGenerator returns a canned JSON payload, recording the prompt.
type fakeGenerator struct {
	payload string
	err     error
	prompt  string
	schema  *genai.Schema
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, schema *genai.Schema, out any) error {
	f.prompt = prompt
	f.schema = schema
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.payload), out)
}

type fakeCapturer struct {
	leadID   uuid.UUID
	captured bool
	name     string
	email    string
	phone    *string
	interest string
	err      error
}

func (f *fakeCapturer) CaptureChatLead(_ context.Context, _ uuid.UUID, name, email string, phone *string, interest string) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}
	f.captured = true
	f.name = name
	f.email = email
	f.phone = phone
	f.interest = interest
	return f.leadID, nil
}

func newTestService(gen Generator, capturer LeadCapturer) *Service {
	return NewService(gen, capturer, validator.New(), logger.New("development"))
}

func TestGenerateListingDescription(t *testing.T) {
	gen := &fakeGenerator{payload: `{"description":"A bright corner condo.","highlights":["Corner unit","South facing"]}`}
	svc := newTestService(gen, nil)

	out, err := svc.GenerateListingDescription(context.Background(), ListingDescriptionInput{
		Title:    "Corner Condo",
		Address:  "12 Ocean Drive",
		City:     "Miami",
		Price:    450000,
		Bedrooms: 2,
	})
	if err != nil {
		t.Fatalf("GenerateListingDescription: %v", err)
	}
	if out.Description == "" || len(out.Highlights) != 2 {
		t.Errorf("unexpected output: %+v", out)
	}
	if !strings.Contains(gen.prompt, "12 Ocean Drive") {
		t.Error("prompt does not include the property address")
	}
	if gen.schema == nil || gen.schema.Type != genai.TypeObject {
		t.Error("expected an object response schema")
	}
}

func TestGenerateCMAReport(t *testing.T) {
	gen := &fakeGenerator{payload: `{"summary":"Priced near market.","estimateLow":420000,"estimateHigh":470000,"opportunities":["Staging"],"risks":["Slow season"]}`}
	svc := newTestService(gen, nil)

	out, err := svc.GenerateCMAReport(context.Background(), CMAInput{
		Address: "12 Ocean Drive",
		City:    "Miami",
		Price:   450000,
	})
	if err != nil {
		t.Fatalf("GenerateCMAReport: %v", err)
	}
	if out.EstimateLow != 420000 || out.EstimateHigh != 470000 {
		t.Errorf("estimates = [%d, %d]", out.EstimateLow, out.EstimateHigh)
	}
}

func TestChatCapturesVolunteeredContact(t *testing.T) {
	gen := &fakeGenerator{payload: `{
		"reply": "Happy to set up a viewing!",
		"captureReady": true,
		"visitorName": "Dana Visitor",
		"visitorEmail": "dana@example.com",
		"visitorPhone": "+15550001234",
		"interest": "12 Ocean Drive"
	}`}
	capturer := &fakeCapturer{leadID: uuid.New()}
	svc := newTestService(gen, capturer)

	reply, err := svc.Chat(context.Background(), uuid.New(), ChatInput{Message: "I'm Dana, dana@example.com, interested in 12 Ocean Drive"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if !reply.IsCaptured || reply.LeadID == nil || *reply.LeadID != capturer.leadID {
		t.Errorf("reply = %+v, want captured lead %s", reply, capturer.leadID)
	}
	if capturer.name != "Dana Visitor" || capturer.email != "dana@example.com" {
		t.Errorf("captured contact = %q / %q", capturer.name, capturer.email)
	}
	if capturer.interest != "12 Ocean Drive" {
		t.Errorf("captured interest = %q", capturer.interest)
	}
}

func TestChatWithoutContactDoesNotCapture(t *testing.T) {
	gen := &fakeGenerator{payload: `{"reply":"We have several condos available.","captureReady":false}`}
	capturer := &fakeCapturer{leadID: uuid.New()}
	svc := newTestService(gen, capturer)

	reply, err := svc.Chat(context.Background(), uuid.New(), ChatInput{Message: "What condos do you have?"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply.IsCaptured || reply.LeadID != nil {
		t.Errorf("reply = %+v, want no capture", reply)
	}
	if capturer.captured {
		t.Error("capturer was invoked without volunteered contact details")
	}
}

func TestChatCaptureFailureStillAnswers(t *testing.T) {
	gen := &fakeGenerator{payload: `{"reply":"Sure!","captureReady":true,"visitorName":"Dana","visitorEmail":"dana@example.com"}`}
	capturer := &fakeCapturer{err: apperr.Persistence("store down", nil)}
	svc := newTestService(gen, capturer)

	reply, err := svc.Chat(context.Background(), uuid.New(), ChatInput{Message: "hi"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply.Reply != "Sure!" || reply.IsCaptured {
		t.Errorf("reply = %+v, want answer without capture", reply)
	}
}

func TestChatRejectsMalformedVisitorEmail(t *testing.T) {
	gen := &fakeGenerator{payload: `{"reply":"Noted!","captureReady":true,"visitorName":"Dana","visitorEmail":"not-an-email"}`}
	capturer := &fakeCapturer{leadID: uuid.New()}
	svc := newTestService(gen, capturer)

	reply, err := svc.Chat(context.Background(), uuid.New(), ChatInput{Message: "hi"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply.IsCaptured || capturer.captured {
		t.Error("capture proceeded with a malformed email address")
	}
}

func TestGenerationFailureSurfacesGenerationError(t *testing.T) {
	gen := &fakeGenerator{err: apperr.Generation("model unavailable", nil)}
	svc := newTestService(gen, nil)

	_, err := svc.GenerateListingDescription(context.Background(), ListingDescriptionInput{Title: "X", Address: "Y", City: "Z", Price: 1})
	if apperr.GetKind(err) != apperr.KindGeneration {
		t.Fatalf("err = %v, want generation error", err)
	}
}

func TestUnconfiguredGeneratorIsRejected(t *testing.T) {
	svc := newTestService(nil, nil)
	_, err := svc.GenerateCMAReport(context.Background(), CMAInput{Address: "A", City: "B", Price: 1})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
}
