package perf_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tayloree/bonuscli/internal/bonus"
	"github.com/tayloree/bonuscli/internal/display"
	"github.com/tayloree/bonuscli/internal/feed"
	"github.com/tayloree/bonuscli/internal/filter"
)

var products = []string{
	"Halfvolle melk", "Jonge Goudse kaas", "Verse kipfilet", "Hollandse aardbeien",
	"Diepvries Pizza Margherita", "Volkoren brood", "Griekse yoghurt", "Heineken pils",
}

var groceryList = []string{
	"melk halfvolle", "pindakaas", "kipfilet", "appels", "griekse yoghurt",
	"pizza margherita", "bier", "wc papier", "aardbeien hollandse", "koffie",
}

func benchmarkFeed(count int) feed.Document {
	var doc feed.Document
	for i := range count {
		url := fmt.Sprintf("https://www.ah.nl/bonus/%d", i)
		name := fmt.Sprintf("%s %d", products[i%len(products)], i)
		doc.Actie = append(doc.Actie, bonus.Fragment{Name: name, URL: url})
		switch i % 4 {
		case 0:
			doc.Actie = append(doc.Actie, bonus.Fragment{Name: "1+1", URL: url})
		case 1:
			doc.Actie = append(doc.Actie, bonus.Fragment{Name: "25%", URL: url}, bonus.Fragment{Name: "korting", URL: url})
		case 2:
			doc.Actie = append(doc.Actie, bonus.Fragment{Name: "3.99", URL: url}, bonus.Fragment{Name: "2.99", URL: url})
		}
		doc.Actie = append(doc.Actie, bonus.Fragment{Name: fmt.Sprintf("%d.49", (i%9)+1), URL: url})
	}
	return doc
}

func setupFeedServer(b *testing.B, offerCount int) (string, *feed.Client) {
	b.Helper()

	payload, err := json.Marshal(benchmarkFeed(offerCount))
	if err != nil {
		b.Fatalf("marshal feed payload: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(payload)
	}))
	b.Cleanup(server.Close)

	return server.URL + "/bonus.json", feed.NewClient(0)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runPipeline(b *testing.B, url string, client *feed.Client, logger *slog.Logger) {
	b.Helper()

	raw, err := client.Fetch(context.Background(), url)
	if err != nil {
		b.Fatalf("fetch feed: %v", err)
	}

	offers := feed.ParseDocument(raw, logger)
	if len(offers) == 0 {
		b.Fatalf("parse returned no offers")
	}

	matched := 0
	for _, item := range groceryList {
		if bonus.FindMatch(item, offers) != nil {
			matched++
		}
	}
	if matched == 0 {
		b.Fatalf("no grocery item matched")
	}

	filtered := filter.Apply(offers, filter.Options{
		Deals:    true,
		Category: "dairy",
		Sort:     filter.SortDiscount,
		Limit:    50,
	})
	if len(filtered) == 0 {
		b.Fatalf("filter returned no offers")
	}
	if err := display.PrintOffersJSON(io.Discard, filtered); err != nil {
		b.Fatalf("print offers json: %v", err)
	}
}

func BenchmarkFeedPipeline_1kOffers(b *testing.B) {
	url, client := setupFeedServer(b, 1000)
	logger := quietLogger()

	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		runPipeline(b, url, client, logger)
	}
}

func BenchmarkParseOffers_5kOffers(b *testing.B) {
	fragments := benchmarkFeed(5000).Fragments()
	opts := bonus.ParseOptions{Logger: quietLogger()}

	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		if offers := bonus.ParseOffersWith(fragments, opts); len(offers) == 0 {
			b.Fatalf("parse returned no offers")
		}
	}
}

func BenchmarkFindMatch_1kOffers(b *testing.B) {
	offers := bonus.ParseOffersWith(benchmarkFeed(1000).Fragments(), bonus.ParseOptions{Logger: quietLogger()})

	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		for _, item := range groceryList {
			_ = bonus.FindMatch(item, offers)
		}
	}
}
