package api

// dashboardHTML is the single-page dashboard. It polls /api/status every
// two seconds and drives the command endpoints with plain form posts.
const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>VampGotchi</title>
    <style>
        body { font-family: sans-serif; background: #222; color: #fff; text-align: center; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; display: flex; flex-direction: column; gap: 20px; }
        .card { background: #333; padding: 20px; border-radius: 10px; }
        h1, h2 { color: #00d4ff; }
        button { padding: 10px 20px; border: none; border-radius: 5px; cursor: pointer; font-weight: bold; width: 100%; margin: 5px; }
        .btn-blue { background: #00d4ff; color: #000; }
        .btn-red { background: #ff6b6b; color: #fff; }
        .btn-green { background: #4cd964; color: #000; }
        input, select { padding: 10px; width: 100%; margin: 10px 0; background: #444; border: 1px solid #555; color: #fff; box-sizing: border-box; }
        ul { list-style: none; padding: 0; text-align: left; }
        li { background: #444; margin: 5px 0; padding: 10px; border-radius: 5px; font-family: monospace; cursor: pointer; }
        .status-badge { display: inline-block; padding: 5px 10px; border-radius: 5px; font-weight: bold; }
        .idle { background: #4cd964; color: #000; }
        .scanning { background: #ffd43b; color: #000; }
        .attacking { background: #ff6b6b; color: #fff; }
        .debug-section { margin-top: 20px; padding: 10px; background: #2a2a2a; border-radius: 5px; }
        .debug-toggle { cursor: pointer; color: #00d4ff; text-decoration: underline; }
    </style>
    <script>
        setInterval(function() {
            fetch('/api/status')
                .then(response => response.json())
                .then(data => {
                    document.getElementById('status-badge').className = 'status-badge ' + data.status_class;
                    document.getElementById('status-text').textContent = data.status_text;
                    document.getElementById('target-count').textContent = data.count;
                    document.getElementById('stat-scans').textContent = data.stats.total_scans;
                    document.getElementById('stat-attacks').textContent = data.stats.total_attacks;
                    document.getElementById('stat-mood').textContent = data.stats.mood;
                    const list = document.getElementById('target-list');
                    const select = document.getElementById('target-select');
                    document.getElementById('scan-btn').disabled = data.scanning;
                    document.getElementById('attack-btn').disabled = !data.selected_target && select.value === '' || data.attacking;
                    document.getElementById('stop-btn').disabled = !data.attacking;
                    list.innerHTML = '';
                    select.innerHTML = '<option value="">Select...</option>';
                    data.targets_info.forEach(target => {
                        const li = document.createElement('li');
                        li.innerHTML = '<strong>' + (target.name || 'Unknown') + '</strong><br><small>' + target.mac + '</small>' +
                            (target.rssi ? ' <span style="color: #00d4ff;">(' + target.rssi + ' dBm)</span>' : '');
                        li.onclick = function() { selectTarget(target.mac); };
                        list.appendChild(li);
                        const option = document.createElement('option');
                        option.value = target.mac;
                        option.textContent = (target.name || 'Unknown') + ' - ' + target.mac;
                        select.appendChild(option);
                    });
                });
        }, 2000);

        function selectTarget(mac) {
            document.getElementById('target-select').value = mac;
        }

        function toggleDebug() {
            const debugDiv = document.getElementById('debug-section');
            debugDiv.style.display = debugDiv.style.display === 'none' ? 'block' : 'none';
        }

        function startAttack() {
            var mac = document.getElementById('target-select').value;
            if(!mac) return alert('Select a target!');
            fetch('/attack', { method: 'POST', headers: {'Content-Type': 'application/x-www-form-urlencoded'}, body: 'mac=' + mac });
        }

        function stopAttack() {
            fetch('/stop', { method: 'POST' });
        }
    </script>
</head>
<body>
    <div class="container">
        <h1>&#129499; VampGotchi</h1>
        <div class="card">
            <h2>Network Configuration</h2>
            <p><strong>Mode:</strong> {{ .NetworkMode }} ({{ .NetworkIP }})</p>
            <h3>AP Mode (Hotspot)</h3>
            <form action="/set_ap" method="POST"><button type="submit" class="btn-blue">Activate AP ({{ .APSSID }})</button></form>
            <h3>Client Mode (Wi-Fi)</h3>
            <form action="/set_client" method="POST">
                <input type="text" name="ssid" placeholder="Network Name" required>
                <input type="password" name="password" placeholder="Password" required>
                <button type="submit" class="btn-blue">Connect</button>
            </form>
        </div>
        <div class="card">
            <h2>Display Settings</h2>
            <form action="/api/config" method="POST">
                <label>Display Mode:</label>
                <select name="display_mode">
                    <option value="black" {{ if eq .DisplayMode "black" }}selected{{ end }}>Black Background (Vampire Theme)</option>
                    <option value="white" {{ if eq .DisplayMode "white" }}selected{{ end }}>White Background</option>
                </select>
                <button type="submit" class="btn-blue">Save Display Settings</button>
            </form>
        </div>
        <div class="card">
            <h2>BLE Control</h2>
            <p>Status: <span id="status-badge" class="status-badge idle">Idle</span></p>
            <p id="status-text">Waiting...</p>
            <button id="scan-btn" onclick="location.href='/scan'" class="btn-green">SCAN BLE</button>
            <hr style="border-color: #555;">
            <p>Targets Found: <span id="target-count">0</span></p>
            <p style="font-size: 12px; color: #888;">Scans: <span id="stat-scans">0</span> | Attacks: <span id="stat-attacks">0</span> | Mood: <span id="stat-mood">bored</span></p>
            <div style="display: flex; gap: 10px;"><select id="target-select"></select></div>
            <div style="display: flex; gap: 10px;">
                <button id="attack-btn" onclick="startAttack()" class="btn-red" disabled>ATTACK</button>
                <button id="stop-btn" onclick="stopAttack()" class="btn-blue" disabled>STOP</button>
            </div>
            <ul id="target-list" style="margin-top: 10px; max-height: 150px; overflow-y: auto;"></ul>
            <p class="debug-toggle" onclick="toggleDebug()">Debug Information</p>
            <div id="debug-section" style="display: none;" class="debug-section">
                <h3>Debug Info</h3>
                <p><a href="/api/debug/scan">View Last Scan Output</a></p>
                <p><a href="/api/debug/bluetooth">View Bluetooth Status</a></p>
                <p><a href="/api/debug/display.png">View E-Paper Frame</a></p>
                <p><a href="/api/clients">View AP Clients</a></p>
            </div>
        </div>
    </div>
</body>
</html>
`
