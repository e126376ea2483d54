package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"usina-backend/internal/models"
	"usina-backend/internal/services"
	"usina-backend/internal/timeutil"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// MonitoringServer serves the ops dashboard on a separate port: system and
// database stats over HTTP, live distribution progress over a websocket.
type MonitoringServer struct {
	db           *pgxpool.Pool
	distribution *services.DistributionService
	port         int
	clients      map[*websocket.Conn]bool
	clientsMux   sync.Mutex
}

type DashboardStats struct {
	DatabaseStatus    string                      `json:"database_status"`
	ActiveConnections int                         `json:"active_connections"`
	ResponseTime      int64                       `json:"response_time_ms"`
	PoolTotalConns    int32                       `json:"pool_total_conns"`
	PoolIdleConns     int32                       `json:"pool_idle_conns"`
	CPUPercent        float64                     `json:"cpu_percent"`
	MemoryPercent     float64                     `json:"memory_percent"`
	MemoryUsed        string                      `json:"memory_used"`
	MemoryTotal       string                      `json:"memory_total"`
	DiskPercent       float64                     `json:"disk_percent"`
	DiskUsed          string                      `json:"disk_used"`
	DiskTotal         string                      `json:"disk_total"`
	DBSize            string                      `json:"db_size"`
	Uptime            string                      `json:"uptime"`
	Date              string                      `json:"date"`
	Progress          []*models.FranchiseProgress `json:"progress"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewMonitoringServer(db *pgxpool.Pool, distribution *services.DistributionService, port int) *MonitoringServer {
	return &MonitoringServer{
		db:           db,
		distribution: distribution,
		port:         port,
		clients:      make(map[*websocket.Conn]bool),
	}
}

func (ms *MonitoringServer) Start() {
	r := mux.NewRouter()

	r.HandleFunc("/api/stats", ms.getStats).Methods("GET")
	r.HandleFunc("/ws", ms.handleWebSocket)

	go ms.broadcastLoop()

	addr := fmt.Sprintf(":%d", ms.port)
	log.Printf("[Monitoring] dashboard running on %s", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}

func (ms *MonitoringServer) getStats(w http.ResponseWriter, r *http.Request) {
	stats := ms.collectStats()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func (ms *MonitoringServer) collectStats() DashboardStats {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := ms.db.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	dbStatus := "healthy"
	if err != nil {
		dbStatus = "unhealthy"
	}

	var activeConns int
	ms.db.QueryRow(ctx, "SELECT count(*) FROM pg_stat_activity").Scan(&activeConns)

	var dbSizeBytes int64
	ms.db.QueryRow(ctx, "SELECT pg_database_size(current_database())").Scan(&dbSizeBytes)

	var uptimeSec int
	ms.db.QueryRow(ctx, "SELECT EXTRACT(EPOCH FROM (NOW() - pg_postmaster_start_time()))::int").Scan(&uptimeSec)

	cpuPercent := 0.0
	if cpuPercents, _ := cpu.Percent(time.Second, false); len(cpuPercents) > 0 {
		cpuPercent = cpuPercents[0]
	}
	memStats, _ := mem.VirtualMemory()
	diskStats, _ := disk.Usage("/")

	poolStat := ms.db.Stat()

	today := timeutil.Today()
	progress, perr := ms.distribution.Progress(ctx, today)
	if perr != nil {
		log.Printf("[Monitoring] progress unavailable: %v", perr)
	}

	stats := DashboardStats{
		DatabaseStatus:    dbStatus,
		ActiveConnections: activeConns,
		ResponseTime:      responseTime,
		PoolTotalConns:    poolStat.TotalConns(),
		PoolIdleConns:     poolStat.IdleConns(),
		CPUPercent:        cpuPercent,
		DBSize:            fmt.Sprintf("%.2f GB", float64(dbSizeBytes)/(1024*1024*1024)),
		Uptime:            formatUptime(uptimeSec),
		Date:              timeutil.DateString(today),
		Progress:          progress,
	}
	if memStats != nil {
		stats.MemoryPercent = memStats.UsedPercent
		stats.MemoryUsed = formatBytes(memStats.Used)
		stats.MemoryTotal = formatBytes(memStats.Total)
	}
	if diskStats != nil {
		stats.DiskPercent = diskStats.UsedPercent
		stats.DiskUsed = formatBytes(diskStats.Used)
		stats.DiskTotal = formatBytes(diskStats.Total)
	}
	return stats
}

func (ms *MonitoringServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Monitoring] websocket upgrade failed: %v", err)
		return
	}

	ms.clientsMux.Lock()
	ms.clients[conn] = true
	ms.clientsMux.Unlock()

	// Push a snapshot immediately so dashboards render without waiting
	conn.WriteJSON(ms.collectStats())

	// Reader loop only detects disconnects; clients never send data
	go func() {
		defer ms.removeClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// broadcastLoop pushes fresh stats to every connected dashboard
func (ms *MonitoringServer) broadcastLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		ms.clientsMux.Lock()
		if len(ms.clients) == 0 {
			ms.clientsMux.Unlock()
			continue
		}
		ms.clientsMux.Unlock()

		stats := ms.collectStats()

		ms.clientsMux.Lock()
		for conn := range ms.clients {
			if err := conn.WriteJSON(stats); err != nil {
				conn.Close()
				delete(ms.clients, conn)
			}
		}
		ms.clientsMux.Unlock()
	}
}

func (ms *MonitoringServer) removeClient(conn *websocket.Conn) {
	ms.clientsMux.Lock()
	defer ms.clientsMux.Unlock()
	conn.Close()
	delete(ms.clients, conn)
}

func formatBytes(b uint64) string {
	const gb = 1024 * 1024 * 1024
	const mb = 1024 * 1024
	if b >= gb {
		return fmt.Sprintf("%.1f GB", float64(b)/gb)
	}
	return fmt.Sprintf("%.0f MB", float64(b)/mb)
}

func formatUptime(seconds int) string {
	d := seconds / 86400
	h := (seconds % 86400) / 3600
	m := (seconds % 3600) / 60
	if d > 0 {
		return fmt.Sprintf("%dd %dh %dm", d, h, m)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
