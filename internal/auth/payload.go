package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Canonicalize encodes v as compact JSON with object keys sorted and
// numbers kept verbatim, so independently built values with the same
// content produce identical bytes. json.RawMessage input is
// re-canonicalized rather than trusted.
func Canonicalize(v any) ([]byte, error) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonicalize: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(encoded))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("canonicalize: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(generic); err != nil {
		return nil, fmt.Errorf("canonicalize: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// EncodeEnvelope joins a canonical body and its signature into the
// two-segment wire form.
func EncodeEnvelope(body, signature []byte) string {
	return segmentEncoding.EncodeToString(body) + tokenDelimiter + segmentEncoding.EncodeToString(signature)
}

// SealEnvelope signs canonical under the envelope signing context and
// returns the wire envelope. sig must hold a private key.
func SealEnvelope(sig *SignatureService, canonical []byte) (string, error) {
	signature, err := sig.SignBytes(signingInput(envelopeContext, canonical))
	if err != nil {
		return "", err
	}
	return EncodeEnvelope(canonical, signature), nil
}

// PayloadVerifier checks envelopes produced by a trusted edge process
// against the arguments the backend actually received.
type PayloadVerifier struct {
	sig    *SignatureService
	logger *zap.Logger
}

// NewPayloadVerifier wraps sig. Only the public key is used.
func NewPayloadVerifier(sig *SignatureService, logger *zap.Logger) *PayloadVerifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PayloadVerifier{sig: sig, logger: logger}
}

// Verify re-canonicalizes args and checks that envelope signs exactly
// those bytes. Any failure returns ErrInvalidSignature.
func (p *PayloadVerifier) Verify(envelope string, args any) error {
	if err := p.verify(envelope, args); err != nil {
		p.logger.Debug("signed payload rejected", zap.Error(err))
		return ErrInvalidSignature
	}
	return nil
}

func (p *PayloadVerifier) verify(envelope string, args any) error {
	segments := strings.Split(envelope, tokenDelimiter)
	if len(segments) != 2 {
		return errors.New("envelope must have two segments")
	}
	body, err := segmentEncoding.DecodeString(segments[0])
	if err != nil {
		return fmt.Errorf("envelope body: %w", err)
	}
	signature, err := segmentEncoding.DecodeString(segments[1])
	if err != nil {
		return fmt.Errorf("envelope signature: %w", err)
	}

	canonical, err := Canonicalize(args)
	if err != nil {
		return err
	}
	if !bytes.Equal(body, canonical) {
		return errors.New("envelope body does not match arguments")
	}

	ok, err := p.sig.VerifyBytes(signature, signingInput(envelopeContext, canonical))
	if err != nil {
		return err
	}
	if !ok {
		return errBadSignature
	}
	return nil
}
