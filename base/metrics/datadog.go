package metrics

import (
	"fmt"
	"sync"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/spf13/viper"

	"github.com/reservex/goapi/base/env"
	"github.com/reservex/goapi/base/log"
)

const (
	// ddRate is the rate to pass metrics to datadog agent. 1 means always
	ddRate = 1
	// buffer 10 counters before sending to statsd
	bufferMetrics = 10

	ddPort = 8125
)

var (
	initOnce = sync.Once{}
	ddClient statsCli
)

func defaultTags() []string {
	return []string{
		// using host removes all tags associated with host
		// ref: https://docs.datadoghq.com/developers/dogstatsd/data_types/#host-tag-key
		"host:",
		"pod:" + env.PodName(),
		"env:" + viper.GetString("env_name"),
		"app:" + viper.GetString("app_name"),
	}
}

func initDDClient() {
	addr := fmt.Sprintf("%s:%d", viper.GetString("datadog_host"), ddPort)
	log.Log().WithField("addr", addr).Info("connecting to datadog agent")

	var err error
	ddClient, err = statsd.NewBuffered(addr, bufferMetrics)
	if err != nil {
		log.Log().WithFields(log.Fields{"addr": addr, "err": err}).Panic(
			"can't talk to datadog agent")
	}
}

type statsCli interface {
	Gauge(name string, value float64, tags []string, rate float64) error
	Count(name string, value int64, tags []string, rate float64) error
	Histogram(name string, value float64, tags []string, rate float64) error
	TimeInMilliseconds(name string, value float64, tags []string, rate float64) error
}

// DDMetrics sends metrics to the datadog statsd agent
type DDMetrics struct {
	ddTags []string
}

func (dm *DDMetrics) tags(tags ...string) []string {
	res := append([]string{}, dm.ddTags...)
	for i := 0; i+1 < len(tags); i += 2 {
		res = append(res, tags[i]+":"+tags[i+1])
	}
	return res
}

// BumpAvg bumps the average for the given key.
// datadog has no plain average, a gauge is the closest fit
func (dm *DDMetrics) BumpAvg(key string, val float64, tags ...string) {
	initOnce.Do(initDDClient)
	_ = ddClient.Gauge(key, val, dm.tags(tags...), ddRate)
}

// BumpSum bumps the sum for the given key.
func (dm *DDMetrics) BumpSum(key string, val float64, tags ...string) {
	initOnce.Do(initDDClient)
	_ = ddClient.Count(key, int64(val), dm.tags(tags...), ddRate)
}

// BumpHistogram bumps the histogram for the given key.
func (dm *DDMetrics) BumpHistogram(key string, val float64, tags ...string) {
	initOnce.Do(initDDClient)
	_ = ddClient.Histogram(key, val, dm.tags(tags...), ddRate)
}

// BumpTime records a duration in milliseconds for the given key.
func (dm *DDMetrics) BumpTime(key string, ms float64, tags ...string) {
	initOnce.Do(initDDClient)
	_ = ddClient.TimeInMilliseconds(key, ms, dm.tags(tags...), ddRate)
}
