package simplepresign

import (
	"context"

	"github.com/tendant/simple-presign/pkg/simplepresign/b2"
)

// The one-call helpers below bundle endpoint resolution and signing for
// callers that do not want to manage a Resolver and Signer themselves. Each
// call performs one authorization round trip; nothing is cached between
// calls.

// PresignedGetURL resolves the account's S3 endpoint and returns a signed
// GET URL for bucket/key.
func PresignedGetURL(ctx context.Context, bucket, key string, expirySeconds uint32, accountID, accountKey, sessionToken string, opts ...b2.Option) (string, error) {
	signer, err := signerFor(ctx, accountID, accountKey, sessionToken, opts)
	if err != nil {
		return "", err
	}
	return signer.PresignGet(bucket, key, expirySeconds)
}

// PresignedPutURL resolves the account's S3 endpoint and returns a signed
// PUT URL for bucket/key.
func PresignedPutURL(ctx context.Context, bucket, key string, expirySeconds uint32, accountID, accountKey, sessionToken string, opts ...b2.Option) (string, error) {
	signer, err := signerFor(ctx, accountID, accountKey, sessionToken, opts)
	if err != nil {
		return "", err
	}
	return signer.PresignPut(bucket, key, expirySeconds)
}

// PresignedMultipartPutURLs resolves the account's S3 endpoint and returns
// one signed PUT URL per part of an existing multipart upload, in ascending
// part order.
func PresignedMultipartPutURLs(ctx context.Context, bucket, key, uploadID string, parts, expirySeconds uint32, accountID, accountKey, sessionToken string, opts ...b2.Option) ([]string, error) {
	signer, err := signerFor(ctx, accountID, accountKey, sessionToken, opts)
	if err != nil {
		return nil, err
	}
	return signer.PresignMultipartPut(MultipartSignRequest{
		Bucket:        bucket,
		Key:           key,
		UploadID:      uploadID,
		Parts:         parts,
		ExpirySeconds: expirySeconds,
	})
}

func signerFor(ctx context.Context, accountID, accountKey, sessionToken string, opts []b2.Option) (*Signer, error) {
	auth, err := b2.NewResolver(opts...).Authorize(ctx, accountID, accountKey)
	if err != nil {
		return nil, err
	}

	return New(Credentials{
		AccountID:     accountID,
		AccountSecret: accountKey,
		Endpoint:      auth.Endpoint,
		Region:        auth.Region,
		SessionToken:  sessionToken,
	}), nil
}
