package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-presign/pkg/simplepresign"
	"github.com/tendant/simple-presign/pkg/simplepresign/b2"
	"github.com/tendant/simple-presign/pkg/utils"
)

func main() {
	// Define command-line flags
	command := flag.String("command", "help", "Command to execute: get, put, multipart, help")
	bucket := flag.String("bucket", "", "Bucket name")
	key := flag.String("key", "", "Object key")
	expiry := flag.Uint("expiry", 3600, "URL validity in seconds")

	accountID := flag.String("account-id", "", "B2 application key id")
	accountKey := flag.String("account-key", "", "B2 application key")
	sessionToken := flag.String("session-token", "", "Session token (generated when empty)")
	apiURL := flag.String("api-url", b2.DefaultAPIURL, "B2 API base URL")

	endpoint := flag.String("endpoint", "", "Fixed S3 endpoint host (skips account authorization)")
	region := flag.String("region", "", "Region for the fixed endpoint (derived from host when empty)")

	uploadID := flag.String("upload-id", "", "Multipart upload id (multipart command)")
	parts := flag.Uint("parts", 1, "Number of parts (multipart command)")

	timeout := flag.Duration("timeout", 30*time.Second, "Timeout for the authorization call")

	flag.Parse()

	if *command == "help" || *command == "" {
		printHelp()
		return
	}

	if *bucket == "" || *key == "" {
		log.Fatal("Bucket and key are required")
	}
	if *expiry == 0 || *expiry > 1<<32-1 {
		log.Fatal("Expiry must be a positive 32-bit value")
	}

	// Check for environment variables if flags not provided
	if *accountID == "" {
		*accountID = os.Getenv("B2_ACCOUNT_ID")
	}
	if *accountKey == "" {
		*accountKey = os.Getenv("B2_ACCOUNT_KEY")
	}
	if *accountID == "" || *accountKey == "" {
		log.Fatal("Account id and key are required (flags or B2_ACCOUNT_ID/B2_ACCOUNT_KEY)")
	}
	if *sessionToken == "" {
		*sessionToken = "session-" + uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	signer, err := buildSigner(ctx, *accountID, *accountKey, *sessionToken, *endpoint, *region, *apiURL)
	if err != nil {
		log.Fatalf("Failed to resolve endpoint: %v", err)
	}

	objectKey := utils.SanitizeObjectKey(*key)

	switch strings.ToLower(*command) {
	case "get":
		url, err := signer.PresignGet(*bucket, objectKey, uint32(*expiry))
		if err != nil {
			log.Fatalf("Failed to presign: %v", err)
		}
		fmt.Println(url)

	case "put":
		url, err := signer.PresignPut(*bucket, objectKey, uint32(*expiry))
		if err != nil {
			log.Fatalf("Failed to presign: %v", err)
		}
		fmt.Println(url)

	case "multipart":
		urls, err := signer.PresignMultipartPut(simplepresign.MultipartSignRequest{
			Bucket:        *bucket,
			Key:           objectKey,
			UploadID:      *uploadID,
			Parts:         uint32(*parts),
			ExpirySeconds: uint32(*expiry),
		})
		if err != nil {
			log.Fatalf("Failed to presign: %v", err)
		}
		encoded, err := json.Marshal(urls)
		if err != nil {
			log.Fatalf("Failed to encode URL list: %v", err)
		}
		fmt.Println(string(encoded))

	default:
		log.Fatalf("Unknown command: %s", *command)
	}
}

func buildSigner(ctx context.Context, accountID, accountKey, sessionToken, endpoint, region, apiURL string) (*simplepresign.Signer, error) {
	if endpoint != "" && region == "" {
		derived, err := b2.RegionFromHost(endpoint)
		if err != nil {
			return nil, err
		}
		region = derived
	}

	if endpoint == "" {
		auth, err := b2.NewResolver(b2.WithAPIURL(apiURL)).Authorize(ctx, accountID, accountKey)
		if err != nil {
			return nil, err
		}
		endpoint, region = auth.Endpoint, auth.Region
	}

	return simplepresign.New(simplepresign.Credentials{
		AccountID:     accountID,
		AccountSecret: accountKey,
		Endpoint:      endpoint,
		Region:        region,
		SessionToken:  sessionToken,
	}), nil
}

func printHelp() {
	fmt.Println("presign - generate presigned URLs for S3-compatible object stores")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  get        Presigned download URL")
	fmt.Println("  put        Presigned upload URL")
	fmt.Println("  multipart  JSON list of presigned part-upload URLs (requires -upload-id)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  presign -command put -bucket media -key videos/clip.mp4 -expiry 600")
	fmt.Println("  presign -command multipart -bucket media -key big.bin -upload-id ID -parts 8")
	fmt.Println()
	flag.PrintDefaults()
}
