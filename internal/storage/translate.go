package storage

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/JayaSurya08-dev/Nimbus/internal/service"
)

// Provider responses are turned into service types here and nowhere else.

func receiptFromPut(path string, out *s3.PutObjectOutput) *service.Receipt {
	r := &service.Receipt{Path: path}
	if out == nil {
		return r
	}
	r.ETag = strings.Trim(aws.ToString(out.ETag), `"`)
	r.VersionID = aws.ToString(out.VersionId)
	return r
}

func signedURL(req *v4.PresignedHTTPRequest) string {
	if req == nil {
		return ""
	}
	return req.URL
}
