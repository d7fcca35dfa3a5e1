// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package security provides middleware for setting security-related HTTP headers
// to protect against common web vulnerabilities.
//
// This middleware sets various security headers recommended by security
// standards (OWASP, Mozilla, etc.) to protect web applications from common
// attacks like XSS, clickjacking, MIME type sniffing, and more. Headers are
// applied in the after stage, so dispatcher-generated responses (404, 405,
// panic recoveries) carry them as well.
//
// # Basic Usage
//
//	import "rivaas.dev/dispatch/middleware/security"
//
//	d := dispatch.MustNew()
//	d.Use(security.New())
//
// # Security Headers
//
// The middleware sets the following security headers by default:
//
//   - X-Frame-Options: Prevents clickjacking (DENY)
//   - X-Content-Type-Options: Prevents MIME type sniffing (nosniff)
//   - X-XSS-Protection: Legacy XSS protection (1; mode=block)
//   - Strict-Transport-Security: Forces HTTPS, sent on TLS connections only
//   - Content-Security-Policy: Controls resource loading (default-src 'self')
//   - Referrer-Policy: Controls referrer information (strict-origin-when-cross-origin)
//
// # Configuration Options
//
//   - [WithFrameOptions]: X-Frame-Options value (DENY, SAMEORIGIN, ALLOW-FROM)
//   - [WithContentTypeNosniff]: Toggle X-Content-Type-Options: nosniff
//   - [WithXSSProtection]: X-XSS-Protection value
//   - [WithHSTS]: HTTP Strict Transport Security configuration
//   - [WithContentSecurityPolicy]: Content Security Policy value
//   - [WithReferrerPolicy]: Referrer-Policy value
//   - [WithPermissionsPolicy]: Permissions-Policy value
//   - [WithCustomHeader]: Additional custom headers
//
// # Presets
//
// Two presets cover the common cases:
//
//	d.Use(security.New(security.DevelopmentPreset())) // relaxed CSP, no HSTS
//	d.Use(security.New(security.ProductionPreset()))  // strict everything
//
// Presets are plain options; later options override them:
//
//	d.Use(security.New(
//	    security.ProductionPreset(),
//	    security.WithFrameOptions("SAMEORIGIN"),
//	))
//
// # HSTS Configuration
//
// HTTP Strict Transport Security (HSTS) forces HTTPS connections. The header
// is only emitted when the request arrived over TLS:
//
//	d.Use(security.New(
//	    security.WithHSTS(31536000, true, false), // 1 year, includeSubDomains
//	))
//
// # Security Best Practices
//
// This middleware implements security headers recommended by:
//
//   - OWASP Secure Headers Project
//   - Mozilla Observatory
//   - Security Headers (securityheaders.com)
//
// Always use HTTPS in production and configure HSTS appropriately.
package security
