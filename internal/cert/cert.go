// Package cert выпускает самоподписанный сертификат для HTTPS сервера.
package cert

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"time"

	"github.com/pkg/errors"
)

const serialNumberBits = 128

// DefaultHosts адреса, для которых выпускается сертификат по умолчанию.
var DefaultHosts = []string{"localhost", "127.0.0.1", "::1"}

// Generate выпускает сертификат и закрытый ключ в формате PEM для указанных хостов.
// Хост, который разбирается как IP адрес, попадает в IPAddresses, остальные в DNSNames.
func Generate(hosts []string, validFor time.Duration) (certPEM, keyPEM []byte, err error) {
	const op = "generate certificate"

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, errors.Wrap(err, op)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), serialNumberBits))
	if err != nil {
		return nil, nil, errors.Wrap(err, op)
	}

	now := time.Now()
	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Organization: []string{"goto"},
		},
		NotBefore:             now,
		NotAfter:              now.Add(validFor),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else {
			template.DNSNames = append(template.DNSNames, h)
		}
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return nil, nil, errors.Wrap(err, op)
	}

	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, nil, errors.Wrap(err, op)
	}

	var certBuf, keyBuf bytes.Buffer
	if err := pem.Encode(&certBuf, &pem.Block{Type: "CERTIFICATE", Bytes: der}); err != nil {
		return nil, nil, errors.Wrap(err, op)
	}
	if err := pem.Encode(&keyBuf, &pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}); err != nil {
		return nil, nil, errors.Wrap(err, op)
	}

	return certBuf.Bytes(), keyBuf.Bytes(), nil
}

// TLSConfig возвращает настройки TLS с самоподписанным сертификатом.
func TLSConfig(hosts []string, validFor time.Duration) (*tls.Config, error) {
	const op = "tls config"

	certPEM, keyPEM, err := Generate(hosts, validFor)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	pair, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{pair},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
