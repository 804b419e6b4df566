// Package log builds the slog loggers used by dirscrape.
//
// Site profiles may carry cookies and custom headers, and directory sites
// often put session identifiers in their URLs (";jsessionid=..." or
// "?token=..."). SecureHandler wraps any slog.Handler and masks those values
// before they reach the output:
//   - attributes whose key names a credential (cookie, authorization, token...)
//   - string values that look like credentials (bearer or basic auth, JWTs)
//   - session path parameters and sensitive query parameters inside URLs,
//     including URLs embedded in error messages
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Warn("failed to process page",
//	    "url", "https://dir.example/socios;jsessionid=A1B2?token=x",
//	)
//	// url=https://dir.example/socios;jsessionid=***REDACTED***?token=***REDACTED***
package log
