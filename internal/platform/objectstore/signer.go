// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package objectstore

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/cloudfront/sign"
)

// CDNSigner issues CloudFront signed URLs for objects under a distribution.
type CDNSigner struct {
	baseURL string
	signer  *sign.URLSigner
	now     func() time.Time
}

// NewCDNSigner builds a signer from an already parsed RSA key.
func NewCDNSigner(baseURL, keyPairID string, privateKey *rsa.PrivateKey) *CDNSigner {
	return &CDNSigner{
		baseURL: baseURL,
		signer:  sign.NewURLSigner(keyPairID, privateKey),
		now:     time.Now,
	}
}

// NewCDNSignerFromFile reads the distribution's PEM private key from disk.
func NewCDNSignerFromFile(baseURL, keyPairID, privateKeyPath string) (*CDNSigner, error) {
	privateKey, err := sign.LoadPEMPrivKeyFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("objectstore: failed to load CDN private key from %s: %w", privateKeyPath, err)
	}

	return NewCDNSigner(baseURL, keyPairID, privateKey), nil
}

// Sign returns a URL for key valid until now+ttl, signed with a policy
// carrying a DateLessThan condition.
func (signer *CDNSigner) Sign(key string, ttl time.Duration) (string, error) {
	resource := objectURL(signer.baseURL, key)
	policy := sign.NewCannedPolicy(resource, signer.now().Add(ttl))

	signed, err := signer.signer.SignWithPolicy(resource, policy)
	if err != nil {
		return "", fmt.Errorf("objectstore: sign url: %w", err)
	}

	return signed, nil
}
