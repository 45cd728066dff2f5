package browser

import (
	"os"

	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"
)

// LogMemoryUsage пишет в лог потребление памяти после обработки профиля:
// RSS процесса, занятость системной памяти и JS-кучу страницы (если
// браузер её отдаёт).
func (b *PlaywrightBrowser) LogMemoryUsage() {
	fields := []zap.Field{}

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if info, err := proc.MemoryInfo(); err == nil {
			fields = append(fields, zap.Uint64("rss_mb", info.RSS/(1024*1024)))
		}
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		fields = append(fields, zap.Float64("system_used_percent", vm.UsedPercent))
	}

	// NOTE: performance.memory есть не во всех браузерах
	if heap, err := b.Evaluate(
		"() => window.performance && performance.memory ? performance.memory.usedJSHeapSize : 0",
	); err == nil {
		if size, ok := heap.(float64); ok && size > 0 {
			fields = append(fields, zap.Int("js_heap_mb", int(size)/(1024*1024)))
		}
	}

	b.log.Info("Память", fields...)
}
