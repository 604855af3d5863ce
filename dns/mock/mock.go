// Package mock logs DNS operations instead of calling a provider, for
// deployments running with MOCK_DNS.
package mock

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/flokiorg/lokirent/dns"
	"github.com/flokiorg/lokirent/logger"
)

type mockDNSClient struct {
	counter atomic.Uint64
}

func NewMockDNSClient() *mockDNSClient {
	return &mockDNSClient{}
}

func (c *mockDNSClient) CreateRecord(ctx context.Context, record dns.Record) (string, error) {
	recordID := fmt.Sprintf("mock_dns_%x%04x", time.Now().UnixMilli(), c.counter.Add(1))
	logger.Logger.Info().
		Str("name", record.Name).
		Str("type", record.Type).
		Str("content", record.Content).
		Bool("proxied", record.Proxied).
		Str("comment", record.Comment).
		Str("record_id", recordID).
		Msg("[MOCK DNS] create record")
	return recordID, nil
}

func (c *mockDNSClient) UpdateRecord(ctx context.Context, zone string, recordID string, content string) error {
	logger.Logger.Info().Str("record_id", recordID).Str("content", content).Msg("[MOCK DNS] update record")
	return nil
}

func (c *mockDNSClient) DeleteRecord(ctx context.Context, zone string, recordID string) error {
	logger.Logger.Info().Str("record_id", recordID).Msg("[MOCK DNS] delete record")
	return nil
}
