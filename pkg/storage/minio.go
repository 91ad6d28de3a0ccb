// Package storage 提供了与对象存储服务（如 MinIO）交互的功能。
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"qu-assist-go/internal/config"
	"qu-assist-go/internal/model"
	"qu-assist-go/pkg/log"
)

// documentPrefix 是文档对象在存储桶中的统一前缀。
const documentPrefix = "documents/"

// Client 封装了 MinIO 客户端与目标存储桶。
type Client struct {
	mc     *minio.Client
	bucket string
}

// NewClient 初始化 MinIO 客户端并确保指定的存储桶存在。
func NewClient(cfg config.MinIOConfig) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 MinIO 客户端失败: %w", err)
	}

	ctx := context.Background()
	exists, err := mc.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("检查 MinIO 存储桶失败: %w", err)
	}
	if !exists {
		log.Infof("存储桶 '%s' 不存在，正在创建...", cfg.BucketName)
		if err := mc.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("创建 MinIO 存储桶失败: %w", err)
		}
	}

	log.Info("MinIO 客户端初始化成功")
	return &Client{mc: mc, bucket: cfg.BucketName}, nil
}

// PutDocument 将原始文件字节写入按日期分区的确定性路径
// documents/YYYY/MM/DD/{name}，返回对象定位符。
func (c *Client) PutDocument(ctx context.Context, fileName string, content []byte) (string, error) {
	objectName := fmt.Sprintf("%s%s/%s", documentPrefix, time.Now().UTC().Format("2006/01/02"), fileName)

	_, err := c.mc.PutObject(ctx, c.bucket, objectName, bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: "application/pdf"})
	if err != nil {
		return "", fmt.Errorf("上传对象 '%s' 失败: %w", objectName, err)
	}
	return objectName, nil
}

// GetDocument 按定位符读回对象的完整内容。
func (c *Client) GetDocument(ctx context.Context, objectName string) ([]byte, error) {
	obj, err := c.mc.GetObject(ctx, c.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("从 MinIO 下载对象失败: %w", err)
	}
	defer obj.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, obj); err != nil {
		return nil, fmt.Errorf("读取 MinIO 对象流失败: %w", err)
	}
	return buf.Bytes(), nil
}

// ListDocuments 列出 documents/ 前缀下的全部对象。
func (c *Client) ListDocuments(ctx context.Context) ([]model.StoredObject, error) {
	var objects []model.StoredObject
	for obj := range c.mc.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    documentPrefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("列出 MinIO 对象失败: %w", obj.Err)
		}
		objects = append(objects, model.StoredObject{
			Name:         obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	return objects, nil
}
