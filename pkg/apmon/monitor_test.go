package apmon

import (
	"bytes"
	"net"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(&bytes.Buffer{})
	return l
}

func buildPacket(t *testing.T, srcMAC, srcIP string) gopacket.Packet {
	t.Helper()
	mac, err := net.ParseMAC(srcMAC)
	if err != nil {
		t.Fatal(err)
	}
	eth := &layers.Ethernet{
		SrcMAC:       mac,
		DstMAC:       net.HardwareAddr{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x01},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    net.ParseIP(srcIP),
		DstIP:    net.ParseIP("192.168.4.1"),
	}
	udp := &layers.UDP{SrcPort: 5000, DstPort: 53}
	if err := udp.SetNetworkLayerForChecksum(ip); err != nil {
		t.Fatal(err)
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, eth, ip, udp); err != nil {
		t.Fatal(err)
	}
	return gopacket.NewPacket(buf.Bytes(), layers.LayerTypeEthernet, gopacket.Default)
}

func TestProcessPacketTracksClients(t *testing.T) {
	m := New("wlan0", "AA:AA:AA:AA:AA:AA", quietLogger())

	m.processPacket(buildPacket(t, "11:22:33:44:55:66", "192.168.4.7"))
	m.processPacket(buildPacket(t, "11:22:33:44:55:66", "192.168.4.7"))
	m.processPacket(buildPacket(t, "77:88:99:AA:BB:CC", "192.168.4.8"))

	clients := m.Clients()
	if len(clients) != 2 {
		t.Fatalf("clients = %d, want 2", len(clients))
	}
	byMAC := make(map[string]Client)
	for _, c := range clients {
		byMAC[c.MAC] = c
	}
	first := byMAC["11:22:33:44:55:66"]
	if first.Packets != 2 {
		t.Errorf("packets = %d, want 2", first.Packets)
	}
	if first.IP != "192.168.4.7" {
		t.Errorf("ip = %q", first.IP)
	}
	if first.Bytes == 0 {
		t.Error("bytes not counted")
	}
}

func TestStopIsIdempotentAndResetsClients(t *testing.T) {
	m := New("wlan0", "AA:AA:AA:AA:AA:AA", quietLogger())
	m.processPacket(buildPacket(t, "11:22:33:44:55:66", "192.168.4.7"))

	// Stop before Start must be a no-op and must not disturb the stop
	// channel a later capture goroutine will hold on to.
	m.Stop()
	m.Stop()
	if m.Running() {
		t.Error("monitor should not be running")
	}
	if got := len(m.Clients()); got != 1 {
		t.Errorf("clients = %d, want 1 (table untouched by no-op stop)", got)
	}
}

func TestProcessPacketIgnoresOwnTraffic(t *testing.T) {
	m := New("wlan0", "AA:AA:AA:AA:AA:AA", quietLogger())

	m.processPacket(buildPacket(t, "AA:AA:AA:AA:AA:AA", "192.168.4.1"))
	m.processPacket(buildPacket(t, "FF:FF:FF:FF:FF:FF", "192.168.4.255"))

	if got := len(m.Clients()); got != 0 {
		t.Errorf("clients = %d, want 0", got)
	}
}
