package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CLOUDINARY_URLが未設定
var ErrUploadDisabled = errors.New("image upload disabled")

// 商品画像をアップロードして公開URLを返す約束。
type ImageUploader interface {
	Upload(ctx context.Context, file io.Reader) (secureURL string, err error)
}

type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryUploaderはCLOUDINARY_URL形式の接続文字列から作る。
// 空文字ならnilを返し、アップロードAPIは無効扱いになる。
func NewCloudinaryUploader(cloudinaryURL string, folder string) (*CloudinaryUploader, error) {
	if strings.TrimSpace(cloudinaryURL) == "" {
		return nil, nil
	}

	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, err
	}

	return &CloudinaryUploader{cld: cld, folder: folder}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, file io.Reader) (string, error) {
	if u == nil || u.cld == nil {
		return "", ErrUploadDisabled
	}

	result, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder: u.folder,
	})
	if err != nil {
		return "", err
	}

	return result.SecureURL, nil
}
