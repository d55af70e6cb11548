package dev

// devPageHTML 是 Dev Panel 的 single page（無 build step、無外部資源）。
const devPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Distlab Dev Panel</title>
<link rel="icon" href="/favicon.svg" type="image/svg+xml">
<style>
  :root { color-scheme: dark; }
  body { font-family: ui-monospace, SFMono-Regular, Menlo, monospace; background:#10131a; color:#d7dce5; margin:0; padding:24px; }
  h1 { font-size:16px; margin:0 0 16px; color:#4da3ff; }
  .row { display:flex; gap:12px; flex-wrap:wrap; align-items:flex-end; margin-bottom:12px; }
  label { display:block; font-size:11px; color:#8b94a7; margin-bottom:4px; }
  select, input { background:#1a1f2b; color:#d7dce5; border:1px solid #2b3242; border-radius:4px; padding:6px 8px; font:inherit; }
  input#snap { width:420px; }
  button { background:#24456e; color:#d7dce5; border:1px solid #3a6ea8; border-radius:4px; padding:6px 14px; font:inherit; cursor:pointer; }
  button:disabled { opacity:.5; cursor:default; }
  #info { font-size:12px; color:#8b94a7; min-height:16px; }
  #info.warn { color:#e0b050; }
  pre { background:#151926; border:1px solid #2b3242; border-radius:6px; padding:12px; overflow:auto; max-height:480px; font-size:12px; }
</style>
</head>
<body>
<h1>Distlab Dev Panel</h1>

<div class="row">
  <div><label for="dist">distribution</label><select id="dist"></select></div>
  <div><label for="rounds">rounds</label><input id="rounds" type="number" value="10" min="1"></div>
  <div><label for="seed">seed (optional)</label><input id="seed" placeholder="auto"></div>
  <div><label for="snap">snap b64u (optional, wins over seed)</label><input id="snap" placeholder=""></div>
</div>
<div class="row">
  <button id="run">Draw</button>
  <button id="sim">Sim</button>
  <button id="clear">Clear</button>
  <span id="info"></span>
</div>
<pre id="out"></pre>

<script>
const distSel = document.getElementById('dist');
const roundsInput = document.getElementById('rounds');
const seedInput = document.getElementById('seed');
const snapInput = document.getElementById('snap');
const btnRun = document.getElementById('run');
const btnSim = document.getElementById('sim');
const btnClear = document.getElementById('clear');
const infoEl = document.getElementById('info');
const out = document.getElementById('out');

function setInfo(text, warn) {
  infoEl.textContent = text;
  infoEl.classList.toggle('warn', !!warn);
}

function setLoading(v) {
  btnRun.disabled = v;
  btnSim.disabled = v;
  if (v) setInfo('Running…', false);
}

function syncLocks() {
  // snap 優先：有 snap 時 seed 視為被忽略
  seedInput.disabled = snapInput.value.trim() !== '';
}

async function loadMeta() {
  try {
    const res = await fetch('/dev/meta');
    if (!res.ok) throw new Error(await res.text());
    const sums = await res.json();
    distSel.innerHTML = '';
    (sums || []).forEach((s) => {
      const opt = document.createElement('option');
      opt.value = String(s.did);
      opt.textContent = s.name + ' (' + s.family + '/' + s.kind + ')';
      distSel.appendChild(opt);
    });
  } catch (err) {
    out.textContent = 'Failed to load meta: ' + err.message;
  }
}

function payload(capLimit) {
  const rounds = Math.min(Number(roundsInput.value) || 1, capLimit);
  const p = { did: Number(distSel.value), rounds: rounds };
  const snap = snapInput.value.trim();
  const seed = seedInput.value.trim();
  if (snap) { p.snap = snap; } else if (seed) { p.seed = seed; }
  return p;
}

async function call(path, capLimit) {
  setLoading(true);
  try {
    const res = await fetch(path, {
      method: 'POST',
      headers: { 'Content-Type': 'application/json' },
      body: JSON.stringify(payload(capLimit)),
    });
    if (!res.ok) throw new Error(await res.text());
    const data = await res.json();
    out.textContent = JSON.stringify(data, null, 2);
    const wanted = Number(roundsInput.value) || 1;
    setInfo(wanted > capLimit ? ('Rounds capped at ' + capLimit.toLocaleString() + '.') : '', wanted > capLimit);
  } catch (err) {
    out.textContent = 'Request failed: ' + err.message;
    setInfo('', false);
  } finally {
    setLoading(false);
  }
}

btnRun.addEventListener('click', () => call('/dev/draw', 5000));
btnSim.addEventListener('click', () => call('/dev/sim', 3000000));
btnClear.addEventListener('click', () => { out.textContent = ''; setInfo('', false); });
snapInput.addEventListener('input', syncLocks);

syncLocks();
loadMeta();
</script>
</body>
</html>`
