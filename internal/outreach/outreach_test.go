package outreach

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/FranksOps/leadscout/internal/lead"
)

type stubGenerator struct {
	text   string
	err    error
	prompt string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.text, s.err
}

var company = lead.Company{
	Name:        "Сытый офис",
	Website:     "https://sitiy-ofis.ru",
	Description: "Доставка обедов в офисы Томска",
}

func TestDraft_Template(t *testing.T) {
	d := New(Config{})
	got := d.Draft(context.Background(), company, "кейтеринг")

	if got.Generated {
		t.Error("expected a template draft")
	}
	if !strings.HasPrefix(got.Body, "Добрый день, компания Сытый офис, к вам обращается компания «Сибирский кедр».") {
		t.Errorf("unexpected greeting: %q", got.Body)
	}
	if !strings.Contains(got.Body, "siberia.eco") {
		t.Errorf("expected the sender site in the body")
	}
	if got.Subject != "Эко-продукция для ваших мероприятий: Сибирский кедр x Сытый офис" {
		t.Errorf("unexpected subject: %q", got.Subject)
	}
	if n := strings.Count(got.Body, "\n- "); n != DefaultSamples {
		t.Errorf("expected %d quoted products, got %d", DefaultSamples, n)
	}
}

func TestDraft_StableProducts(t *testing.T) {
	d := New(Config{})
	a := d.Draft(context.Background(), company, "кейтеринг")
	b := d.Draft(context.Background(), company, "кейтеринг")
	if a.Body != b.Body {
		t.Error("expected the same lead to get the same draft")
	}
}

func TestDraft_CustomSender(t *testing.T) {
	d := New(Config{
		Sender: Sender{
			Company:  "Томская пасека",
			Products: []Product{{Name: "Мёд липовый", Price: "600 руб."}},
		},
		Samples: 5,
	})
	got := d.Draft(context.Background(), company, "кейтеринг")

	if !strings.Contains(got.Body, "«Томская пасека»") {
		t.Errorf("expected custom sender, got %q", got.Body)
	}
	if !strings.Contains(got.Body, "- Мёд липовый (600 руб.)") {
		t.Errorf("expected the only product once, got %q", got.Body)
	}
	if !strings.Contains(got.Body, "siberia.eco") {
		t.Errorf("expected default site to fill the gap")
	}
}

func TestDraft_Generated(t *testing.T) {
	gen := &stubGenerator{text: "```json\n{\"subject\": \"Кедр к вашему фуршету\", \"body\": \"Добрый день!\"}\n```"}
	d := New(Config{Generator: gen})
	got := d.Draft(context.Background(), company, "кейтеринг")

	if !got.Generated {
		t.Fatal("expected a generated draft")
	}
	if got.Subject != "Кедр к вашему фуршету" || got.Body != "Добрый день!" {
		t.Errorf("unexpected draft: %+v", got)
	}
	if !strings.Contains(gen.prompt, `"кейтеринг"`) || !strings.Contains(gen.prompt, "Доставка обедов") {
		t.Errorf("expected category and description in the prompt, got %q", gen.prompt)
	}
}

func TestDraft_GeneratedMissingSubject(t *testing.T) {
	gen := &stubGenerator{text: `{"body": "Добрый день!"}`}
	got := New(Config{Generator: gen}).Draft(context.Background(), company, "кейтеринг")

	if got.Body != "Добрый день!" {
		t.Errorf("expected model body, got %q", got.Body)
	}
	if !strings.HasPrefix(got.Subject, "Эко-продукция") {
		t.Errorf("expected template subject, got %q", got.Subject)
	}
}

func TestDraft_Fallback(t *testing.T) {
	tests := []struct {
		name string
		gen  *stubGenerator
	}{
		{"error", &stubGenerator{err: errors.New("429 quota exceeded")}},
		{"not json", &stubGenerator{text: "Вот ваше письмо: ..."}},
		{"empty object", &stubGenerator{text: `{}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(Config{Generator: tt.gen}).Draft(context.Background(), company, "кейтеринг")
			if got.Generated {
				t.Error("expected template fallback")
			}
			if !strings.HasPrefix(got.Body, "Добрый день, компания Сытый офис") {
				t.Errorf("unexpected fallback body: %q", got.Body)
			}
		})
	}
}
