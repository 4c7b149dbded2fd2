package firestore

import (
	"context"
	"encoding/base64"
	"strings"

	"cloud.google.com/go/firestore"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
)

// CreateFirestoreClient connects with the service account JSON, which may be base64
// encoded. Without one the client falls back to application default credentials, or
// to the emulator when FIRESTORE_EMULATOR_HOST is set.
func CreateFirestoreClient(ctx context.Context, projectID, serviceAccount string) (*firestore.Client, error) {
	opts := []option.ClientOption{
		option.WithGRPCDialOption(grpc.WithStatsHandler(otelgrpc.NewClientHandler())),
	}

	if credentials := DecodeServiceAccount(serviceAccount); len(credentials) > 0 {
		opts = append(opts, option.WithCredentialsJSON(credentials))
	}

	if projectID == "" {
		projectID = firestore.DetectProjectID
	}

	return firestore.NewClient(ctx, projectID, opts...)
}

// DecodeServiceAccount returns the service account JSON, decoding it from base64 when
// it is not plain JSON already.
func DecodeServiceAccount(raw string) []byte {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "{") {
		return []byte(raw)
	}

	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return []byte(raw)
	}
	return decoded
}
