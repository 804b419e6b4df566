// Package fetch retrieves directory pages over HTTP.
//
// A Fetcher issues one GET per URL with a per-attempt timeout. Only attempts
// that time out are retried, up to the configured number of attempts; every
// other failure (DNS, refused connection, TLS, non-2xx status) is returned at
// once. Once the attempts are exhausted the error matches ErrTimedOut.
//
// Response bodies are decoded to UTF-8 using the charset announced by the
// server (or sniffed from the document) and capped at a maximum size.
//
// # Usage
//
//	client, err := fetch.NewHTTPClient("")
//	f := fetch.New(client, 30*time.Second, 3, fetch.WithUserAgent("Mozilla 5.0"))
//	body, err := f.Fetch(ctx, "https://www.example.org/socios")
package fetch
