package server

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"io"
	"log/slog"
	"math/big"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mercator-hq/rdl/pkg/config"
)

// writeCert writes a self-signed certificate for 127.0.0.1 and returns
// the file paths and the parsed certificate.
func writeCert(t *testing.T, dir, cn string, notAfter time.Time) (certFile, keyFile string, cert *x509.Certificate) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: cn},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     notAfter,
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatal(err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatal(err)
	}

	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "key.pem")
	if err := os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600); err != nil {
		t.Fatal(err)
	}
	cert, err = x509.ParseCertificate(der)
	if err != nil {
		t.Fatal(err)
	}
	return certFile, keyFile, cert
}

func TestServer_TLS(t *testing.T) {
	certFile, keyFile, cert := writeCert(t, t.TempDir(), "rdl-test", time.Now().Add(time.Hour))
	s := newTestServer(t, func(o *Options) {
		o.Config.TLS = config.TLSConfig{Enabled: true, CertFile: certFile, KeyFile: keyFile, MinVersion: "1.3"}
	})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	pool := x509.NewCertPool()
	pool.AddCert(cert)
	client := &http.Client{
		Transport: &http.Transport{TLSClientConfig: &tls.Config{RootCAs: pool}},
		Timeout:   5 * time.Second,
	}
	url := "https://" + ln.Addr().String() + "/health"
	var resp *http.Response
	for range 50 {
		if resp, err = client.Get(url); err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("TLS request failed: %v", err)
	}
	resp.Body.Close()
	if resp.TLS == nil || resp.TLS.Version != tls.VersionTLS13 {
		t.Errorf("connection state = %+v, want TLS 1.3", resp.TLS)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Serve() = %v", err)
	}
}

func TestServer_TLSMissingCertificate(t *testing.T) {
	dir := t.TempDir()
	s := newTestServer(t, func(o *Options) {
		o.Config.TLS = config.TLSConfig{
			Enabled:  true,
			CertFile: filepath.Join(dir, "missing.pem"),
			KeyFile:  filepath.Join(dir, "missing.key"),
		}
	})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Serve(context.Background(), ln); err == nil {
		t.Fatal("expected an error without certificate files")
	}
}

func TestCertReloader(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	certFile, keyFile, _ := writeCert(t, dir, "first", time.Now().Add(time.Hour))

	r := newCertReloader(certFile, keyFile, logger)
	if _, err := r.getCertificate(nil); err == nil {
		t.Error("getCertificate before load should fail")
	}
	if err := r.load(); err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if r.changed() {
		t.Error("changed() right after load")
	}

	// Renew with a later modification time.
	writeCert(t, dir, "second", time.Now().Add(time.Hour))
	later := time.Now().Add(time.Minute)
	for _, f := range []string{certFile, keyFile} {
		if err := os.Chtimes(f, later, later); err != nil {
			t.Fatal(err)
		}
	}
	if !r.changed() {
		t.Fatal("changed() should report the renewal")
	}
	if err := r.load(); err != nil {
		t.Fatalf("reload error = %v", err)
	}
	got, _ := r.getCertificate(nil)
	if got.Leaf.Subject.CommonName != "second" {
		t.Errorf("serving %q, want the renewed certificate", got.Leaf.Subject.CommonName)
	}

	// An expired replacement is rejected and the current one kept.
	writeCert(t, dir, "expired", time.Now().Add(-time.Minute))
	if err := r.load(); err == nil {
		t.Error("expired certificate should be rejected")
	}
	got, _ = r.getCertificate(nil)
	if got.Leaf.Subject.CommonName != "second" {
		t.Errorf("serving %q after failed reload, want %q", got.Leaf.Subject.CommonName, "second")
	}
}
