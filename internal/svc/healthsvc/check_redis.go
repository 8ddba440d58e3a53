package healthsvc

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/yusufsyaifudin/marathon/pkg/metric"
)

type RedisInfoer interface {
	Info(ctx context.Context, section ...string) *redis.StringCmd
}

// RedisStatus is taken from redis INFO command.
type RedisStatus struct {
	Status
	Uptime              metric.Number `json:"uptime"`
	ConnectedClients    metric.Number `json:"connectedClients"`
	BlockedClients      metric.Number `json:"blockedClients"`
	UsedMemory          string        `json:"usedMemory"`
	TotalSystemMemory   string        `json:"totalSystemMemory"`
	MaxMemory           string        `json:"maxMemory"`
	RejectedConnections metric.Number `json:"rejectedConnections"`
	CPUUsage            metric.Number `json:"cpuUsage"`
}

type RedisChecker struct {
	name   string
	client RedisInfoer
}

var _ Checker = (*RedisChecker)(nil)

func NewRedisChecker(name string, client RedisInfoer) *RedisChecker {
	return &RedisChecker{name: name, client: client}
}

func (r *RedisChecker) Name() string {
	return r.name
}

func (r *RedisChecker) Check(ctx context.Context) Report {
	res, err := r.client.Info(ctx).Result()
	if err != nil {
		return RedisStatus{Status: down(err)}
	}

	if strings.TrimSpace(res) == "" {
		return RedisStatus{Status: down(fmt.Errorf("could not get server status"))}
	}

	info := ParseRedisInfo(res)
	return RedisStatus{
		Status:              up(),
		Uptime:              metric.Number(info["uptime_in_seconds"]),
		ConnectedClients:    metric.Number(info["connected_clients"]),
		BlockedClients:      metric.Number(info["blocked_clients"]),
		UsedMemory:          info["used_memory_human"],
		TotalSystemMemory:   info["total_system_memory_human"],
		MaxMemory:           info["maxmemory_human"],
		RejectedConnections: metric.Number(info["rejected_connections"]),
		CPUUsage:            metric.Number(info["used_cpu_user"]),
	}
}

// ParseRedisInfo read "key:value" lines, section headers and blank lines are skipped.
func ParseRedisInfo(info string) map[string]string {
	out := map[string]string{}

	scanner := bufio.NewScanner(strings.NewReader(info))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, val, found := strings.Cut(line, ":")
		if !found {
			continue
		}

		out[key] = val
	}

	return out
}
