// Package outreach drafts the first sales email to a lead.
package outreach

import (
	"bytes"
	"context"
	"encoding/json"
	"hash/fnv"
	"strings"
	"text/template"

	"github.com/FranksOps/leadscout/internal/lead"
	"github.com/FranksOps/leadscout/internal/llm"
	"github.com/FranksOps/leadscout/internal/metrics"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// DefaultSamples is how many products are quoted in one email.
const DefaultSamples = 3

// Product is one catalog line quoted in an email.
type Product struct {
	Name  string `mapstructure:"name" yaml:"name" json:"name"`
	Price string `mapstructure:"price" yaml:"price" json:"price"`
}

// Sender describes the company the emails are written on behalf of.
type Sender struct {
	Company  string    `mapstructure:"company" yaml:"company"`
	Site     string    `mapstructure:"site" yaml:"site"`
	Products []Product `mapstructure:"products" yaml:"products"`
}

// DefaultSender is used when no sender is configured.
var DefaultSender = Sender{
	Company: "Сибирский кедр",
	Site:    "siberia.eco",
	Products: []Product{
		{Name: "Кедровые орехи очищенные (500г)", Price: "1200 руб."},
		{Name: "Кедровое масло холодного отжима (250мл)", Price: "950 руб."},
		{Name: "Варенье из сосновых шишек (300г)", Price: "450 руб."},
		{Name: "Мармелад с кедровым орехом Ассорти", Price: "350 руб."},
		{Name: "Кедровый грильяж в шоколаде", Price: "550 руб."},
	},
}

// Draft is an email ready for review.
type Draft struct {
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Generated bool   `json:"generated"`
}

// Config configures a Drafter. A nil Generator always produces the template
// draft.
type Config struct {
	Sender    Sender
	Generator llm.Generator
	Samples   int
	Logger    *zap.Logger
}

// Drafter writes outreach emails.
type Drafter struct {
	sender  Sender
	gen     llm.Generator
	samples int
	logger  *zap.Logger
}

// New builds a Drafter, filling unset sender fields from DefaultSender.
func New(cfg Config) *Drafter {
	s := cfg.Sender
	if s.Company == "" {
		s.Company = DefaultSender.Company
	}
	if s.Site == "" {
		s.Site = DefaultSender.Site
	}
	if len(s.Products) == 0 {
		s.Products = DefaultSender.Products
	}
	if cfg.Samples <= 0 {
		cfg.Samples = DefaultSamples
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Drafter{sender: s, gen: cfg.Generator, samples: cfg.Samples, logger: cfg.Logger}
}

type draftData struct {
	Sender   Sender
	Company  lead.Company
	Category string
	Products []Product
}

// Draft writes an email to company. Generation failures fall back to the
// template; a missing subject or body in the model reply is filled from it.
func (d *Drafter) Draft(ctx context.Context, company lead.Company, category string) Draft {
	data := draftData{
		Sender:   d.sender,
		Company:  company,
		Category: category,
		Products: d.pick(company.Name),
	}
	fallback := d.template(data)
	if d.gen == nil {
		return fallback
	}

	provider := llm.Name(d.gen)
	text, err := d.gen.Generate(ctx, render(promptTmpl, data))
	if err != nil {
		class := llm.Class(err)
		metrics.RecordGenerationFailure(provider, class)
		d.logger.Warn("email generation failed",
			zap.String("provider", provider),
			zap.String("class", class),
			zap.Error(err),
		)
		return fallback
	}

	generated, err := parseDraft(text)
	if err != nil {
		metrics.RecordGenerationFailure(provider, "malformed")
		d.logger.Warn("email generation returned malformed output",
			zap.String("provider", provider),
			zap.Error(err),
		)
		return fallback
	}
	if generated.Subject == "" {
		generated.Subject = fallback.Subject
	}
	if generated.Body == "" {
		generated.Body = fallback.Body
	}
	generated.Generated = true
	return generated
}

func (d *Drafter) template(data draftData) Draft {
	return Draft{
		Subject: render(subjectTmpl, data),
		Body:    render(bodyTmpl, data),
	}
}

// pick returns up to samples consecutive catalog products, starting at an
// offset derived from the company name so a lead always gets the same quote.
func (d *Drafter) pick(name string) []Product {
	products := d.sender.Products
	n := min(d.samples, len(products))
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	start := int(h.Sum32() % uint32(len(products)))

	out := make([]Product, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, products[(start+i)%len(products)])
	}
	return out
}

func parseDraft(text string) (Draft, error) {
	var out Draft
	if err := json.Unmarshal([]byte(llm.StripCodeFence(text)), &out); err != nil {
		return Draft{}, eris.Wrap(err, "outreach: decode model output")
	}
	out.Subject = strings.TrimSpace(out.Subject)
	out.Body = strings.TrimSpace(out.Body)
	if out.Subject == "" && out.Body == "" {
		return Draft{}, eris.New("outreach: model returned an empty draft")
	}
	return out, nil
}

func render(t *template.Template, data draftData) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		// The templates are fixed and only read string fields.
		panic(err)
	}
	return strings.TrimSpace(buf.String())
}
