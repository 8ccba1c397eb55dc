package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signer computes and checks the proof the payment gateway attaches to its callbacks.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) Signer {
	return Signer{
		secret: []byte(secret),
	}
}

// Sign returns hex(HMAC-SHA256(secret, orderRef + "|" + paymentRef)).
func (s Signer) Sign(orderRef, paymentRef string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(orderRef + "|" + paymentRef))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s Signer) Verify(orderRef, paymentRef, proof string) bool {
	expected := s.Sign(orderRef, paymentRef)
	return hmac.Equal([]byte(expected), []byte(proof))
}
