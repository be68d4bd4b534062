package helpers

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/lithammer/shortuuid/v3"
	"github.com/pkg/errors"
)

var ErrImageNotFound = errors.New("image not found")

// ImageStore is what handlers need from the image bucket.
type ImageStore interface {
	Upload(name string, contentType string, body io.Reader) error
	Download(name string) ([]byte, string, error)
}

// ImageStorage keeps doctor profile images in an S3 bucket under Folder.
type ImageStorage struct {
	Bucket string
	Folder string

	uploader *s3manager.Uploader
	client   *s3.S3
}

func NewImageStorage(sess *session.Session, bucket, folder string) *ImageStorage {
	return &ImageStorage{
		Bucket:   bucket,
		Folder:   folder,
		uploader: s3manager.NewUploader(sess),
		client:   s3.New(sess),
	}
}

// ImageName builds a unique object name keeping the extension of the uploaded file.
func ImageName(fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return fmt.Sprintf("%s%s", shortuuid.New(), ext)
}

func (st *ImageStorage) key(name string) string {
	return path.Join(st.Folder, path.Base(name))
}

func (st *ImageStorage) Upload(name string, contentType string, body io.Reader) error {
	_, err := st.uploader.Upload(&s3manager.UploadInput{
		Bucket:      aws.String(st.Bucket),
		Key:         aws.String(st.key(name)),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return errors.Wrapf(err, "failed uploading %s", name)
	}
	return nil
}

// Download returns the image bytes and content type.
func (st *ImageStorage) Download(name string) ([]byte, string, error) {
	out, err := st.client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(st.Bucket),
		Key:    aws.String(st.key(name)),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil, "", ErrImageNotFound
		}
		return nil, "", errors.Wrapf(err, "failed getting %s", name)
	}
	defer out.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, out.Body); err != nil {
		return nil, "", errors.Wrapf(err, "failed reading %s", name)
	}

	return buf.Bytes(), aws.StringValue(out.ContentType), nil
}
