// Package apmon watches the access-point interface while the appliance
// is in AP mode and tracks the clients talking through it. On hosts
// where the capture cannot be opened (no interface, not root) the
// monitor stays disabled and the rest of the appliance is unaffected.
package apmon

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
	"github.com/sirupsen/logrus"
)

// Client is one station seen on the AP interface.
type Client struct {
	MAC       string    `json:"mac"`
	IP        string    `json:"ip,omitempty"`
	Packets   uint64    `json:"packets"`
	Bytes     uint64    `json:"bytes"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// Monitor captures on the AP interface and keeps per-client counters.
type Monitor struct {
	iface  string
	apMAC  string
	logger *logrus.Logger

	mu       sync.Mutex
	handle   *pcap.Handle
	clients  map[string]*Client
	running  bool
	stopChan chan struct{}
}

// New builds a Monitor for the given interface. apMAC, when known, is
// excluded from the client table.
func New(iface, apMAC string, logger *logrus.Logger) *Monitor {
	return &Monitor{
		iface:    iface,
		apMAC:    strings.ToUpper(apMAC),
		logger:   logger,
		clients:  make(map[string]*Client),
		stopChan: make(chan struct{}),
	}
}

// Start opens the capture. The error is returned so the caller can log
// it once and leave the monitor disabled.
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}

	handle, err := pcap.OpenLive(m.iface, 1600, true, pcap.BlockForever)
	if err != nil {
		return fmt.Errorf("opening interface %s: %w", m.iface, err)
	}
	m.handle = handle
	m.running = true

	// Local copy: Stop closes and replaces the field.
	stop := m.stopChan
	source := gopacket.NewPacketSource(handle, handle.LinkType())
	go func() {
		for {
			select {
			case <-stop:
				return
			case packet, ok := <-source.Packets():
				if !ok {
					return
				}
				m.processPacket(packet)
			}
		}
	}()

	m.logger.Info("AP client monitor started on ", m.iface)
	return nil
}

// Stop closes the capture and clears the client table.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	close(m.stopChan)
	m.stopChan = make(chan struct{})
	m.running = false
	if m.handle != nil {
		m.handle.Close()
		m.handle = nil
	}
	m.clients = make(map[string]*Client)
	m.logger.Info("AP client monitor stopped")
}

// Running reports whether a capture is open.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Clients returns a snapshot of the client table.
func (m *Monitor) Clients() []Client {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Client, 0, len(m.clients))
	for _, c := range m.clients {
		out = append(out, *c)
	}
	return out
}

func (m *Monitor) processPacket(packet gopacket.Packet) {
	ethLayer := packet.Layer(layers.LayerTypeEthernet)
	if ethLayer == nil {
		return
	}
	eth := ethLayer.(*layers.Ethernet)

	src := strings.ToUpper(eth.SrcMAC.String())
	if src == m.apMAC || src == "FF:FF:FF:FF:FF:FF" {
		return
	}

	var srcIP string
	if ipLayer := packet.Layer(layers.LayerTypeIPv4); ipLayer != nil {
		srcIP = ipLayer.(*layers.IPv4).SrcIP.String()
	}

	now := time.Now()
	size := uint64(len(packet.Data()))

	m.mu.Lock()
	defer m.mu.Unlock()
	client, ok := m.clients[src]
	if !ok {
		client = &Client{MAC: src, FirstSeen: now}
		m.clients[src] = client
		m.logger.Debugf("New AP client %s", src)
	}
	client.Packets++
	client.Bytes += size
	client.LastSeen = now
	if srcIP != "" {
		client.IP = srcIP
	}
}
