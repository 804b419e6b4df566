package extract

import (
	"errors"
	"reflect"
	"testing"

	"github.com/nao1215/dirscrape/internal/config"
	"github.com/nao1215/dirscrape/internal/model"
)

const listingPage = `<!DOCTYPE html>
<html><body>
<a class="lm" href="https://dir.example/socio/1">Uno</a>
<a class="lm" href="/socio/relative">Relative</a>
<a class="lm other" href="https://dir.example/socio/ignored">Wrong class</a>
<a class="lm" href="https://dir.example/socio/2">Dos</a>
<a class="lm" href="https://dir.example/socio/1">Uno again</a>
<ul class="pager lfr-pagination-buttons">
  <li><a href="javascript:void(0)">Anterior</a></li>
  <li><a href="http://dir.example/page/2">Siguiente</a></li>
  <li><a>No href</a></li>
</ul>
<ul class="pager"><li><a href="https://dir.example/not-pagination">x</a></li></ul>
</body></html>`

const detailPage = `<html><body>
<div class="socios-panel-lat">
  <h2 class="tit-soc">  Acme <span>Industrias</span> S.L. </h2>
  <div class="socios-descripcion"><strong>Domicilio</strong> Calle Mayor 1, Madrid</div>
  <div class="socios-descripcion"><strong>Teléfono</strong> 910 000 000</div>
  <div class="socios-descripcion"><strong>Correo electrónico</strong> info@acme.example</div>
  <div class="socios-descripcion"><strong>Persona de contacto</strong> Ana García</div>
</div>
<div class="socios-panel-lat"><h2 class="tit-soc">Second card</h2></div>
</body></html>`

func TestExtractorLinks(t *testing.T) {
	t.Parallel()

	e := Default()

	t.Run("enterprise links keep document order and duplicates", func(t *testing.T) {
		t.Parallel()

		want := []string{
			"https://dir.example/socio/1",
			"https://dir.example/socio/2",
			"https://dir.example/socio/1",
		}
		if got := e.EnterpriseLinks(listingPage); !reflect.DeepEqual(got, want) {
			t.Errorf("EnterpriseLinks() = %v, want %v", got, want)
		}
	})

	t.Run("pagination links come only from the pagination list", func(t *testing.T) {
		t.Parallel()

		want := []string{"http://dir.example/page/2"}
		if got := e.PaginationLinks(listingPage); !reflect.DeepEqual(got, want) {
			t.Errorf("PaginationLinks() = %v, want %v", got, want)
		}
	})

	t.Run("only absolute hrefs survive the filter", func(t *testing.T) {
		t.Parallel()

		body := `<html><body>
<a class="lm" href="/relative">a</a>
<a class="lm" href="javascript:void(0)">b</a>
<a class="lm" href="https://ok.example/x">c</a>
</body></html>`
		want := []string{"https://ok.example/x"}
		if got := e.EnterpriseLinks(body); !reflect.DeepEqual(got, want) {
			t.Errorf("EnterpriseLinks() = %v, want %v", got, want)
		}
	})

	t.Run("no matches yields an empty slice", func(t *testing.T) {
		t.Parallel()

		got := e.PaginationLinks("<html><body><p>nothing</p></body></html>")
		if got == nil || len(got) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", got)
		}
	})
}

func TestExtractorRecord(t *testing.T) {
	t.Parallel()

	e := Default()

	t.Run("detail page yields one record from the first card", func(t *testing.T) {
		t.Parallel()

		got, ok := e.Record(detailPage)
		if !ok {
			t.Fatal("expected a record")
		}
		want := model.Record{
			Name:          "Acme Industrias S.L.",
			Address:       "Calle Mayor 1, Madrid",
			Phone:         "910 000 000",
			Email:         "info@acme.example",
			ContactPerson: "Ana García",
		}
		if got != want {
			t.Errorf("Record() = %+v, want %+v", got, want)
		}
	})

	t.Run("listing page has no record", func(t *testing.T) {
		t.Parallel()

		if _, ok := e.Record(listingPage); ok {
			t.Error("expected no record for a page without a detail card")
		}
	})

	t.Run("missing labels leave fields empty", func(t *testing.T) {
		t.Parallel()

		body := `<div class="socios-panel-lat"><h2 class="tit-soc">Solo</h2>
<div class="socios-descripcion">Teléfono 600</div></div>`
		got, ok := e.Record(body)
		if !ok {
			t.Fatal("expected a record")
		}
		want := model.Record{Name: "Solo", Phone: "600"}
		if got != want {
			t.Errorf("Record() = %+v, want %+v", got, want)
		}
	})

	t.Run("labels sharing one block keep the trailing text", func(t *testing.T) {
		t.Parallel()

		body := `<div class="socios-panel-lat"><h2 class="tit-soc">Shared</h2>
<div class="socios-descripcion">Domicilio Calle 2 Teléfono 600 Correo electrónico a@b.example</div></div>`
		got, ok := e.Record(body)
		if !ok {
			t.Fatal("expected a record")
		}
		want := model.Record{
			Name:    "Shared",
			Address: "Calle 2 Teléfono 600 Correo electrónico a@b.example",
			Phone:   "600 Correo electrónico a@b.example",
			Email:   "a@b.example",
		}
		if got != want {
			t.Errorf("Record() = %+v, want %+v", got, want)
		}
	})

	t.Run("later block overwrites an earlier value", func(t *testing.T) {
		t.Parallel()

		body := `<div class="socios-panel-lat"><h2 class="tit-soc">Twice</h2>
<div class="socios-descripcion">Teléfono 111</div>
<div class="socios-descripcion">Teléfono 222</div></div>`
		got, _ := e.Record(body)
		if got.Phone != "222" {
			t.Errorf("expected phone from the last block, got %q", got.Phone)
		}
	})

	t.Run("card without name or blocks is still a record", func(t *testing.T) {
		t.Parallel()

		got, ok := e.Record(`<div class="socios-panel-lat"></div>`)
		if !ok {
			t.Fatal("expected a record")
		}
		if !got.IsZero() {
			t.Errorf("expected zero record, got %+v", got)
		}
	})
}

func TestExtractorExtract(t *testing.T) {
	t.Parallel()

	page, err := Default().Extract(listingPage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.HasRecord {
		t.Error("listing page must not carry a record")
	}

	want := []string{
		"http://dir.example/page/2",
		"https://dir.example/socio/1",
		"https://dir.example/socio/2",
		"https://dir.example/socio/1",
	}
	if got := page.Links(); !reflect.DeepEqual(got, want) {
		t.Errorf("Links() = %v, want %v", got, want)
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("custom profile selectors and labels are used", func(t *testing.T) {
		t.Parallel()

		site := config.SiteConfig{
			Selectors: config.Selectors{
				Pagination:  "nav.pages a",
				DetailLink:  "a.member",
				Card:        "article.member",
				Name:        "h1",
				Description: "p",
			},
			Labels: config.Labels{
				Address:       "Address:",
				Phone:         "Phone:",
				Email:         "Email:",
				ContactPerson: "Contact:",
			},
		}
		e, err := New(site)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		body := `<nav class="pages"><a href="https://x.example/2">2</a></nav>
<article class="member"><h1>Globex</h1><p>Address: 1 Road</p><p>Contact: Hank</p></article>`
		page, err := e.Extract(body)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(page.PaginationLinks, []string{"https://x.example/2"}) {
			t.Errorf("unexpected pagination links: %v", page.PaginationLinks)
		}
		want := model.Record{Name: "Globex", Address: "1 Road", ContactPerson: "Hank"}
		if !page.HasRecord || page.Record != want {
			t.Errorf("Record = %+v (has %v), want %+v", page.Record, page.HasRecord, want)
		}
	})

	t.Run("invalid selector is rejected", func(t *testing.T) {
		t.Parallel()

		site := config.DefaultSiteConfig()
		site.Selectors.Card = "div[class="
		if _, err := New(site); !errors.Is(err, ErrInvalidSelector) {
			t.Errorf("expected ErrInvalidSelector, got %v", err)
		}
	})

	t.Run("empty selector is rejected", func(t *testing.T) {
		t.Parallel()

		site := config.DefaultSiteConfig()
		site.Selectors.Name = ""
		if _, err := New(site); !errors.Is(err, ErrInvalidSelector) {
			t.Errorf("expected ErrInvalidSelector, got %v", err)
		}
	})
}
