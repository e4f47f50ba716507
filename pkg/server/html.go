package server

const fallbackHTML = `<!DOCTYPE html>
<html>
<head>
    <title>SPV Lens - Bitcoin SPV Proof Checker</title>
    <style>
        body { font-family: Arial, sans-serif; max-width: 860px; margin: 50px auto; padding: 20px; }
        h1 { color: #f7931a; }
        select, textarea { width: 100%; font-family: monospace; }
        textarea { height: 200px; }
        button { background: #f7931a; color: white; padding: 10px 20px; border: none; cursor: pointer; }
        pre { background: #f5f5f5; padding: 15px; overflow-x: auto; }
    </style>
</head>
<body>
    <h1>SPV Lens</h1>
    <p>Pick an endpoint and paste its JSON request body.</p>
    <select id="endpoint">
        <option value="/api/vin">vin: {"vin": "01..."}</option>
        <option value="/api/vout">vout: {"vout": "02...", "network": "mainnet"}</option>
        <option value="/api/tx/split">split tx: {"raw_tx": "0200..."}</option>
        <option value="/api/header">header: {"header": "80 bytes hex"}</option>
        <option value="/api/headers/validate">header chain: {"headers": "...", "store": false}</option>
        <option value="/api/prove">merkle proof: {"txid", "merkle_root", "intermediate_nodes", "index"}</option>
        <option value="/api/proof/verify">SPV proof: {"proof": {...}, "store": false}</option>
        <option value="/api/retarget">retarget: {"previous_target", "first_timestamp", "second_timestamp"}</option>
        <option value="/api/swap">swap: {"args", "witness", "lock_hash", "capacity"}</option>
    </select>
    <br><br>
    <textarea id="input" placeholder='{"header":"0000..."}'></textarea>
    <br><br>
    <button onclick="send()">Send</button>
    <h2>Result:</h2>
    <pre id="output">Results will appear here...</pre>

    <script>
        async function send() {
            const endpoint = document.getElementById('endpoint').value;
            const output = document.getElementById('output');
            try {
                const response = await fetch(endpoint, {
                    method: 'POST',
                    headers: {'Content-Type': 'application/json'},
                    body: document.getElementById('input').value
                });
                output.textContent = JSON.stringify(await response.json(), null, 2);
            } catch (err) {
                output.textContent = 'Error: ' + err.message;
            }
        }
    </script>
</body>
</html>`
