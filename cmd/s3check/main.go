// Command s3check verifies generated presigned URLs against a live
// S3-compatible endpoint. It signs URLs with the library, pushes real bytes
// through them with a plain HTTP client, and uses aws-sdk-go-v2 only for the
// operations presigned URLs cannot perform (creating and completing the
// multipart upload, cleanup).
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/tendant/simple-presign/pkg/simplepresign"
	"github.com/tendant/simple-presign/pkg/simplepresign/b2"
	"github.com/tendant/simple-presign/pkg/utils"
)

func main() {
	accountID := flag.String("account-id", "", "B2 application key id")
	accountKey := flag.String("account-key", "", "B2 application key")
	bucket := flag.String("bucket", "", "Bucket name")
	key := flag.String("key", "", "Object key (generated when empty)")
	mode := flag.String("mode", "single", "Check mode: single, multipart")
	parts := flag.Uint("parts", 2, "Number of parts (multipart mode)")
	partSize := flag.Int("part-size", 5*1024*1024, "Part size in bytes (multipart mode, >= 5MiB for most stores)")
	expiry := flag.Uint("expiry", 600, "Presigned URL validity in seconds")
	apiURL := flag.String("api-url", b2.DefaultAPIURL, "B2 API base URL")
	keep := flag.Bool("keep", false, "Keep the uploaded object instead of deleting it")
	flag.Parse()

	if *accountID == "" {
		*accountID = os.Getenv("B2_ACCOUNT_ID")
	}
	if *accountKey == "" {
		*accountKey = os.Getenv("B2_ACCOUNT_KEY")
	}
	if *accountID == "" || *accountKey == "" || *bucket == "" {
		log.Fatal("Account id, account key and bucket are required")
	}
	if *key == "" {
		*key = "s3check/" + uuid.NewString() + ".bin"
	}
	objectKey := utils.SanitizeObjectKey(*key)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	auth, err := b2.NewResolver(b2.WithAPIURL(*apiURL)).Authorize(ctx, *accountID, *accountKey)
	if err != nil {
		log.Fatalf("Failed to resolve endpoint: %v", err)
	}
	fmt.Printf("Resolved endpoint %s (region %s)\n", auth.Endpoint, auth.Region)

	signer := simplepresign.New(simplepresign.Credentials{
		AccountID:     *accountID,
		AccountSecret: *accountKey,
		Endpoint:      auth.Endpoint,
		Region:        auth.Region,
		SessionToken:  "session-" + uuid.NewString(),
	})

	client, err := s3Client(ctx, auth, *accountID, *accountKey)
	if err != nil {
		log.Fatalf("Failed to build S3 client: %v", err)
	}

	switch *mode {
	case "single":
		err = checkSingle(ctx, signer, *bucket, objectKey, uint32(*expiry))
	case "multipart":
		err = checkMultipart(ctx, signer, client, *bucket, objectKey, uint32(*parts), *partSize, uint32(*expiry))
	default:
		log.Fatalf("Unknown mode: %s", *mode)
	}
	if err != nil {
		log.Fatalf("Check failed: %v", err)
	}

	if !*keep {
		_, err = client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(*bucket),
			Key:    aws.String(objectKey),
		})
		if err != nil {
			log.Printf("Cleanup failed (object %s left behind): %v", objectKey, err)
		}
	}

	fmt.Println("OK")
}

func s3Client(ctx context.Context, auth b2.Authorization, accountID, accountKey string) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(auth.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accountID,
			accountKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String("https://" + auth.Endpoint)
	}), nil
}

// checkSingle uploads through a presigned PUT URL and reads the object back
// through a presigned GET URL.
func checkSingle(ctx context.Context, signer *simplepresign.Signer, bucket, key string, expiry uint32) error {
	payload := bytes.Repeat([]byte("simple-presign "), 64)

	putURL, err := signer.PresignPut(bucket, key, expiry)
	if err != nil {
		return fmt.Errorf("presign put: %w", err)
	}
	if err := httpPut(ctx, putURL, payload); err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	fmt.Printf("Uploaded %d bytes to %s\n", len(payload), key)

	getURL, err := signer.PresignGet(bucket, key, expiry)
	if err != nil {
		return fmt.Errorf("presign get: %w", err)
	}
	body, err := httpGet(ctx, getURL)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	if !bytes.Equal(body, payload) {
		return fmt.Errorf("downloaded content differs: got %d bytes, want %d", len(body), len(payload))
	}
	fmt.Println("Round trip verified")
	return nil
}

// checkMultipart initiates a multipart upload with the SDK, uploads every
// part through its presigned URL, and completes the upload with the collected
// ETags.
func checkMultipart(ctx context.Context, signer *simplepresign.Signer, client *s3.Client, bucket, key string, parts uint32, partSize int, expiry uint32) error {
	created, err := client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("create multipart upload: %w", err)
	}
	uploadID := aws.ToString(created.UploadId)
	fmt.Printf("Started multipart upload %s\n", uploadID)

	abort := func() {
		_, abortErr := client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
			Bucket:   aws.String(bucket),
			Key:      aws.String(key),
			UploadId: created.UploadId,
		})
		if abortErr != nil {
			log.Printf("Abort failed for upload %s: %v", uploadID, abortErr)
		}
	}

	urls, err := signer.PresignMultipartPut(simplepresign.MultipartSignRequest{
		Bucket:        bucket,
		Key:           key,
		UploadID:      uploadID,
		Parts:         parts,
		ExpirySeconds: expiry,
	})
	if err != nil {
		abort()
		return fmt.Errorf("presign parts: %w", err)
	}

	completed := make([]types.CompletedPart, 0, len(urls))
	for i, partURL := range urls {
		payload := bytes.Repeat([]byte{byte('a' + i%26)}, partSize)
		etag, err := httpPutETag(ctx, partURL, payload)
		if err != nil {
			abort()
			return fmt.Errorf("upload part %d: %w", i+1, err)
		}
		completed = append(completed, types.CompletedPart{
			ETag:       aws.String(etag),
			PartNumber: aws.Int32(int32(i + 1)),
		})
		fmt.Printf("Uploaded part %d/%d\n", i+1, len(urls))
	}

	_, err = client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(bucket),
		Key:             aws.String(key),
		UploadId:        created.UploadId,
		MultipartUpload: &types.CompletedMultipartUpload{Parts: completed},
	})
	if err != nil {
		abort()
		return fmt.Errorf("complete multipart upload: %w", err)
	}

	head, err := client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("head object: %w", err)
	}
	want := int64(parts) * int64(partSize)
	if aws.ToInt64(head.ContentLength) != want {
		return fmt.Errorf("assembled object is %d bytes, want %d", aws.ToInt64(head.ContentLength), want)
	}
	fmt.Printf("Multipart upload assembled: %d bytes\n", want)
	return nil
}

func httpPut(ctx context.Context, url string, payload []byte) error {
	_, err := httpPutETag(ctx, url, payload)
	return err
}

func httpPutETag(ctx context.Context, url string, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("status %s: %s", resp.Status, body)
	}
	return resp.Header.Get("ETag"), nil
}

func httpGet(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("status %s: %s", resp.Status, body)
	}
	return io.ReadAll(resp.Body)
}
