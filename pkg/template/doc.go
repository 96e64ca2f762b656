// Package template implements the lightweight rendering used by outbound
// notifications: `{{key}}` variable substitution plus channel-specific
// post-processing (plain-text derivation for email bodies, hard length
// truncation for SMS).
//
// Rendering is total by design. Unknown placeholders are left verbatim so that
// partially-filled templates remain inspectable instead of failing delivery,
// and every function is a pure transformation of its inputs.
//
// # Usage
//
//	body := template.Render("Hello {{user_name}}, SKR {{skr_number}} was issued.", map[string]string{
//	    "user_name":  "Jane Doe",
//	    "skr_number": "SKR-0001",
//	})
//
//	text := template.HTMLToText(htmlBody)     // plain-text fallback for email
//	sms := template.TruncateSMS(renderedSMS)  // never exceeds 160 characters
package template
